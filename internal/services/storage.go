package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/config"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
)

// TranscriptStore keeps transcripts under private keys. Nothing in it is
// served directly; reads go through the ride's participant check.
type TranscriptStore interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// NewTranscriptStore picks S3 when a bucket is configured and local disk
// otherwise.
func NewTranscriptStore(cfg *config.Config) (TranscriptStore, error) {
	if cfg.S3Enabled() {
		awsCfg := &aws.Config{Region: aws.String(cfg.AWSRegion)}
		if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
			awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
		}
		sess, err := session.NewSession(awsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		log.Printf("Transcripts will be archived to s3://%s", cfg.AWSS3Bucket)
		return &S3TranscriptStore{
			uploader:   s3manager.NewUploader(sess),
			downloader: s3manager.NewDownloader(sess),
			bucket:     cfg.AWSS3Bucket,
		}, nil
	}

	if err := os.MkdirAll(cfg.TranscriptDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	log.Printf("AWS S3 not configured. Archiving transcripts to %s", cfg.TranscriptDir)
	return NewLocalTranscriptStore(cfg.TranscriptDir), nil
}

type S3TranscriptStore struct {
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	bucket     string
}

func (s *S3TranscriptStore) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3TranscriptStore) Get(ctx context.Context, key string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer(nil)
	_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%w: %s", carpool.ErrNoTranscript, key)
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return buf.Bytes(), nil
}

// LocalTranscriptStore writes under dir with owner-only permissions.
type LocalTranscriptStore struct {
	dir string
}

func NewLocalTranscriptStore(dir string) *LocalTranscriptStore {
	return &LocalTranscriptStore{dir: dir}
}

func (s *LocalTranscriptStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

func (s *LocalTranscriptStore) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0600); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (s *LocalTranscriptStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", carpool.ErrNoTranscript, key)
	}
	return body, err
}

// TranscriptArchiver stores the chat of completed rides and reads it back
// for participants.
type TranscriptArchiver struct {
	svc     *carpool.Service
	store   TranscriptStore
	baseURL string
	now     func() time.Time
}

// NewTranscriptArchiver records transcripts as baseURL/api/rides/<id>/transcript,
// the authenticated route that serves them.
func NewTranscriptArchiver(svc *carpool.Service, store TranscriptStore, baseURL string) *TranscriptArchiver {
	return &TranscriptArchiver{svc: svc, store: store, baseURL: baseURL, now: time.Now}
}

func transcriptKey(ride *models.Ride) string {
	return fmt.Sprintf("rides/%d/transcript-%d.json", ride.ID, ride.CompletedAt.Unix())
}

// Archive stores the transcript of a completed ride and records on the ride
// where participants can fetch it.
func (a *TranscriptArchiver) Archive(ctx context.Context, rideID uint) (string, error) {
	ride, msgs, err := a.svc.Transcript(ctx, rideID)
	if err != nil {
		return "", err
	}
	if ride.Status != models.RideStatusCompleted {
		return "", fmt.Errorf("%w: ride %d is %s", carpool.ErrInvalidState, rideID, ride.Status)
	}

	body, err := json.MarshalIndent(api.Transcript{Ride: *ride, Messages: msgs, ArchivedAt: a.now()}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := a.store.Put(ctx, transcriptKey(ride), body); err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/api/rides/%d/transcript", a.baseURL, rideID)
	if err := a.svc.SetTranscriptURL(ctx, rideID, url); err != nil {
		return "", err
	}
	log.Printf("Archived %d message(s) of ride %d", len(msgs), rideID)
	return url, nil
}

// Load returns the stored transcript of ride. Callers check who is asking.
func (a *TranscriptArchiver) Load(ctx context.Context, ride *models.Ride) ([]byte, error) {
	if ride.CompletedAt == nil {
		return nil, carpool.ErrRideNotCompleted
	}
	return a.store.Get(ctx, transcriptKey(ride))
}

// ArchiveInBackground runs Archive detached from the request that completed
// the ride. Failures are logged.
func (a *TranscriptArchiver) ArchiveInBackground(rideID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := a.Archive(ctx, rideID); err != nil {
			log.Printf("Failed to archive transcript for ride %d: %v", rideID, err)
		}
	}()
}
