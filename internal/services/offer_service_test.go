package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/models"
	"homepath/api/internal/utils"
)

func sampleOffer() OfferInput {
	return OfferInput{
		PropertyAddress: "45-19128 65 Ave, Surrey",
		OfferDetails: models.OfferDetails{
			OfferPrice:     735000,
			Subjects:       []string{"financing", "inspection"},
			ExpiryDate:     "2026-04-10",
			PossessionDate: "2026-06-01",
			Deposit:        36750,
		},
	}
}

func TestOfferService_DepositAboveOfferPrice(t *testing.T) {
	s := NewOfferService(nil, nil, nil, NopNotifier{}, zap.NewNop())
	in := sampleOffer()
	in.OfferDetails.Deposit = 800000

	_, err := s.Create(context.Background(), "user-1", in)
	var verr *journey.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestOfferService_SubmitCompletesMilestone(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_offer_service", db.CollectionOffers, db.CollectionUserProgress)
	notifier := new(mockNotifier)
	notifier.On("OfferSubmitted", mock.Anything, mock.Anything).Return(nil)
	progress := NewProgressService(database, zap.NewNop())
	s := NewOfferService(database, progress, nil, notifier, zap.NewNop())
	ctx := context.Background()

	offer, err := s.Create(ctx, "user-1", sampleOffer())
	require.NoError(t, err)
	assert.Equal(t, models.OfferDraft, offer.Status)

	submitted, milestoneUpdated, err := s.Submit(ctx, offer.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, milestoneUpdated)
	assert.Equal(t, models.OfferSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	// Both writes are observable afterwards.
	stored, err := s.FindByID(ctx, offer.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OfferSubmitted, stored.Status)
	p, err := progress.Get(ctx, "user-1")
	require.NoError(t, err)
	status, _ := p.StoredStatus(journey.StepMakeOffer)
	assert.Equal(t, models.MilestoneCompleted, status)

	_, _, err = s.Submit(ctx, offer.ID, "user-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	accepted, err := s.UpdateStatus(ctx, offer.ID, models.OfferAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, accepted.Status)

	_, err = s.UpdateStatus(ctx, offer.ID, models.OfferRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.UpdateStatus(ctx, offer.ID, models.OfferDraft)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOfferService_OwnerScoping(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_offer_service_owner", db.CollectionOffers)
	s := NewOfferService(database, new(mockProgressService), nil, NopNotifier{}, zap.NewNop())
	ctx := context.Background()

	offer, err := s.Create(ctx, "user-1", sampleOffer())
	require.NoError(t, err)

	_, err = s.FindByID(ctx, offer.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Submit(ctx, offer.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfferService_SubmitMilestoneFailure(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_offer_service_partial", db.CollectionOffers)
	progress := new(mockProgressService)
	progress.On("CompleteMilestone", mock.Anything, "user-1", journey.StepMakeOffer, mock.Anything).Return(nil, assert.AnError)
	s := NewOfferService(database, progress, nil, NopNotifier{}, zap.NewNop())
	ctx := context.Background()

	offer, err := s.Create(ctx, "user-1", sampleOffer())
	require.NoError(t, err)

	submitted, milestoneUpdated, err := s.Submit(ctx, offer.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, milestoneUpdated)
	assert.Equal(t, models.OfferSubmitted, submitted.Status)
}

func TestOfferService_AddAttachment(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_offer_service_attach", db.CollectionOffers)
	store := new(mockStorage)
	s := NewOfferService(database, new(mockProgressService), store, NopNotifier{}, zap.NewNop())
	ctx := context.Background()

	offer, err := s.Create(ctx, "user-1", sampleOffer())
	require.NoError(t, err)

	store.On("PresignAttachmentUpload", mock.Anything, offer.ID, "pre approval.pdf", "application/pdf").
		Return("https://bucket.s3.example.com/put", "offers/"+offer.ID+"/x_pre_approval.pdf", nil)

	upload, err := s.AddAttachment(ctx, offer.ID, "user-1", "pre approval.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.example.com/put", upload.UploadURL)

	store.On("PresignAttachmentDownload", mock.Anything, upload.Key).Return("https://bucket.s3.example.com/get", nil)

	stored, err := s.FindByID(ctx, offer.ID, "")
	require.NoError(t, err)
	require.Len(t, stored.Attachments, 1)
	assert.Equal(t, upload.Key, stored.Attachments[0].Key)
	assert.Equal(t, "https://bucket.s3.example.com/get", stored.Attachments[0].DownloadURL)
	store.AssertExpectations(t)
}
