package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/metrics"
	"homepath/api/internal/models"
	"homepath/api/internal/storage"
	"homepath/api/internal/utils"
)

// OfferInput is the body of an offer draft request.
type OfferInput struct {
	PropertyAddress string              `json:"propertyAddress" binding:"required"`
	OfferDetails    models.OfferDetails `json:"offerDetails" binding:"required"`
}

// AttachmentUpload is a presigned upload slot for an offer document.
type AttachmentUpload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// IOfferService drafts, submits and reviews purchase offers.
type IOfferService interface {
	Create(ctx context.Context, userID string, in OfferInput) (*models.Offer, error)
	FindByID(ctx context.Context, id, userID string) (*models.Offer, error)
	Submit(ctx context.Context, id, userID string) (offer *models.Offer, milestoneUpdated bool, err error)
	UpdateStatus(ctx context.Context, id string, status models.OfferStatus) (*models.Offer, error)
	AddAttachment(ctx context.Context, id, userID, filename, contentType string) (*AttachmentUpload, error)
}

type offerService struct {
	db       *mongo.Database
	progress IProgressService
	storage  storage.IS3Storage
	notifier INotifier
	logger   *zap.Logger
}

// NewOfferService creates a new OfferService.
func NewOfferService(db *mongo.Database, progress IProgressService, store storage.IS3Storage, notifier INotifier, logger *zap.Logger) IOfferService {
	return &offerService{db: db, progress: progress, storage: store, notifier: notifier, logger: logger.Named("offers")}
}

// Create stores a new draft offer owned by userID.
func (s *offerService) Create(ctx context.Context, userID string, in OfferInput) (*models.Offer, error) {
	if in.OfferDetails.Deposit > in.OfferDetails.OfferPrice {
		return nil, &journey.ValidationError{Fields: map[string]string{"offerDetails.deposit": "must not exceed the offer price"}}
	}
	if in.OfferDetails.Subjects == nil {
		in.OfferDetails.Subjects = []string{}
	}

	now := time.Now().UTC()
	offer := &models.Offer{
		UserID:          userID,
		PropertyAddress: strings.TrimSpace(in.PropertyAddress),
		OfferDetails:    in.OfferDetails,
		Status:          models.OfferDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	op := func() error {
		offer.ID = utils.NewID()
		return db.InsertOne(ctx, s.db, db.CollectionOffers, offer)
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to store offer: %w", err)
	}
	return offer, nil
}

// FindByID returns an offer with short-lived download links for its
// attachments. A non-empty userID restricts the lookup to that owner's offers.
func (s *offerService) FindByID(ctx context.Context, id, userID string) (*models.Offer, error) {
	filter := bson.M{"_id": id}
	if userID != "" {
		filter["user_id"] = userID
	}
	offer, err := db.FindOne[models.Offer](ctx, s.db, db.CollectionOffers, filter)
	if err != nil || s.storage == nil {
		return offer, err
	}
	for i := range offer.Attachments {
		url, err := s.storage.PresignAttachmentDownload(ctx, offer.Attachments[i].Key)
		if err != nil {
			s.logger.Warn("attachment download url unavailable", zap.String("key", offer.Attachments[i].Key), zap.Error(err))
			continue
		}
		offer.Attachments[i].DownloadURL = url
	}
	return offer, nil
}

// Submit moves a draft offer to submitted and then completes the make-offer
// milestone for its owner. The two writes are independent; if the second
// fails the offer stays submitted and milestoneUpdated is false.
func (s *offerService) Submit(ctx context.Context, id, userID string) (*models.Offer, bool, error) {
	now := time.Now().UTC()
	filter := bson.M{"_id": id, "status": models.OfferDraft}
	if userID != "" {
		filter["user_id"] = userID
	}

	var offer models.Offer
	err := s.db.Collection(db.CollectionOffers).FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": models.OfferSubmitted, "submitted_at": now, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, s.transitionError(ctx, id, userID, models.OfferSubmitted)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to submit offer %s: %w", id, err)
	}

	metrics.OffersSubmitted.Inc()
	if err := s.notifier.OfferSubmitted(ctx, &offer); err != nil {
		s.logger.Warn("failed to queue offer notification", zap.String("offer_id", id), zap.Error(err))
	}

	_, err = s.progress.CompleteMilestone(ctx, offer.UserID, journey.StepMakeOffer, map[string]interface{}{
		"offerId":    offer.ID,
		"offerPrice": offer.OfferDetails.OfferPrice,
	})
	if err != nil {
		s.logger.Error("offer submitted but milestone not updated", zap.String("offer_id", id), zap.Error(err))
		return &offer, false, nil
	}
	return &offer, true, nil
}

// UpdateStatus records the seller's answer on a submitted offer.
func (s *offerService) UpdateStatus(ctx context.Context, id string, status models.OfferStatus) (*models.Offer, error) {
	if status != models.OfferAccepted && status != models.OfferRejected {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var offer models.Offer
	err := s.db.Collection(db.CollectionOffers).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.OfferSubmitted},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.transitionError(ctx, id, "", status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update offer %s: %w", id, err)
	}
	return &offer, nil
}

// transitionError tells a missing offer apart from one in the wrong status.
func (s *offerService) transitionError(ctx context.Context, id, userID string, next models.OfferStatus) error {
	current, err := s.FindByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: offer %s is %s", ErrInvalidTransition, id, current.Status)
	}
	// The offer changed between the update and the lookup.
	return fmt.Errorf("%w: offer %s was modified concurrently", ErrInvalidTransition, id)
}

// AddAttachment reserves an upload slot for a supporting document on a
// draft offer and records it on the offer.
func (s *offerService) AddAttachment(ctx context.Context, id, userID, filename, contentType string) (*AttachmentUpload, error) {
	offer, err := s.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferDraft {
		return nil, fmt.Errorf("%w: attachments can only be added to drafts", ErrInvalidTransition)
	}

	url, key, err := s.storage.PresignAttachmentUpload(ctx, id, filename, contentType)
	if err != nil {
		return nil, err
	}

	attachment := models.OfferAttachment{
		Key:         key,
		Filename:    storage.SanitizeFilename(filename),
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.Collection(db.CollectionOffers).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"attachments": attachment}, "$set": bson.M{"updated_at": attachment.CreatedAt}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record attachment on offer %s: %w", id, err)
	}
	return &AttachmentUpload{UploadURL: url, Key: key}, nil
}
