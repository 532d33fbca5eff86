package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/atelier-booking/internal/auth"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

func TestCategorySlugIsUnique(t *testing.T) {
	f := newFixture(t)

	c, err := f.categories.Add(f.admin, "  Peinture ")
	require.NoError(t, err)
	assert.Equal(t, "Peinture", c.Name)
	assert.Equal(t, "peinture", c.Slug)

	_, err = f.categories.Add(f.admin, "peinture")
	assert.ErrorIs(t, err, ErrConflict)

	list, err := f.categories.List(f.admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConcurrentCategoryAddsKeepOne(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.categories.Add(f.admin, "Céramique")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestCategoryUpdate(t *testing.T) {
	f := newFixture(t)
	painting, err := f.categories.Add(f.admin, "Peinture")
	require.NoError(t, err)
	_, err = f.categories.Add(f.admin, "Poterie")
	require.NoError(t, err)

	same, err := f.categories.Update(f.admin, painting.ID, "PEINTURE")
	require.NoError(t, err)
	assert.Equal(t, "PEINTURE", same.Name)
	assert.Equal(t, "peinture", same.Slug)

	_, err = f.categories.Update(f.admin, painting.ID, "poterie")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.categories.Update(f.admin, "missing", "Dessin")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.categories.Update(f.admin, painting.ID, " x ")
	assert.True(t, IsValidation(err))
}

func TestCategoryDeleteAndGuard(t *testing.T) {
	f := newFixture(t)
	c, err := f.categories.Add(f.admin, "Dessin")
	require.NoError(t, err)

	_, err = f.categories.Add(f.user, "Collage")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.categories.Delete(f.user, c.ID), ErrForbidden)

	require.NoError(t, f.categories.Delete(f.admin, c.ID))
	assert.ErrorIs(t, f.categories.Delete(f.admin, c.ID), ErrNotFound)

	_, err = f.categories.Add(f.admin, "Dessin")
	assert.NoError(t, err, "slug is free again after delete")
}

func inquiryInput() InquiryInput {
	return InquiryInput{
		CompanyName: "Atlas SA", ContactName: "Yasmine", Email: "Yasmine@Atlas.ma", Phone: "+212611111111",
		WorkshopType: "peinture", Participants: 12, Location: "atelier",
	}
}

func TestSubmitInquiry(t *testing.T) {
	f := newFixture(t)

	q, err := f.inquiries.Submit(context.Background(), inquiryInput())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, q.Status)
	assert.Equal(t, "yasmine@atlas.ma", q.Email)
	assert.Equal(t, "peinture", q.WorkshopType)

	in := inquiryInput()
	in.WorkshopType, in.CustomWorkshopType = "Autre", "Calligraphie"
	in.Location, in.CustomLocation = "other", "Casablanca"
	q, err = f.inquiries.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Calligraphie", q.WorkshopType)
	assert.Equal(t, "Casablanca", q.Location)

	list, err := f.inquiries.List(f.admin)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSubmitInquiryValidation(t *testing.T) {
	f := newFixture(t)
	var ve *ValidationError

	in := inquiryInput()
	in.WorkshopType = "autre"
	_, err := f.inquiries.Submit(context.Background(), in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"customWorkshopType"}, ve.Fields)

	in = inquiryInput()
	in.Participants = 0
	in.CompanyName = ""
	_, err = f.inquiries.Submit(context.Background(), in)
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"companyName", "participants"}, ve.Fields)

	in = inquiryInput()
	in.Participants = -3
	_, err = f.inquiries.Submit(context.Background(), in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid fields", ve.Msg)

	list, err := f.inquiries.List(f.admin)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInquiryStatus(t *testing.T) {
	f := newFixture(t)
	q, err := f.inquiries.Submit(context.Background(), inquiryInput())
	require.NoError(t, err)

	_, err = f.inquiries.SetStatus(f.user, q.ID, model.StatusConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.inquiries.SetStatus(f.admin, q.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	version := f.version(t, repository.CollCorporate, q.ID)
	again, err := f.inquiries.SetStatus(f.admin, q.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, got.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, version, f.version(t, repository.CollCorporate, q.ID))

	_, err = f.inquiries.SetStatus(f.admin, "missing", model.StatusCanceled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	hash, err := auth.HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	require.NoError(t, f.profiles.Create(context.Background(), model.Profile{
		ID: "admin-2", Email: "owner@atelier.ma", Role: model.RoleAdmin, PasswordHash: hash,
	}))
	svc := NewAuthService(f.profiles, "test-secret", 15)

	tok, p, err := svc.Login(context.Background(), " Owner@Atelier.ma ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin-2", p.ID)
	assert.Empty(t, p.PasswordHash)
	claims, err := auth.ParseAccessToken("test-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-2", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, _, err = svc.Login(context.Background(), "owner@atelier.ma", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@atelier.ma", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "", "")
	assert.True(t, IsValidation(err))
}
