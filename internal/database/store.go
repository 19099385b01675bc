package database

import (
	"context"
	"errors"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the Postgres carpool.Store. WithRide holds a row lock on the ride
// for the whole callback.
type Store struct {
	db *gorm.DB
}

var _ carpool.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateRide(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Create(ride).Error
}

func (s *Store) Ride(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.db.WithContext(ctx).First(&ride, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, carpool.ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (s *Store) Rides(ctx context.Context, filter carpool.RideFilter) ([]models.Ride, error) {
	var rides []models.Ride
	if err := ridesQuery(s.db.WithContext(ctx), filter).Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func ridesQuery(db *gorm.DB, filter carpool.RideFilter) *gorm.DB {
	query := db.Model(&models.Ride{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.RideTypes) > 0 {
		query = query.Where("ride_type IN ?", filter.RideTypes)
	}
	if filter.LeadUserID != 0 {
		query = query.Where("lead_user_id = ?", filter.LeadUserID)
	}
	if len(filter.From) > 0 {
		query = query.Where("from_location IN ?", filter.From)
	}
	if len(filter.To) > 0 {
		query = query.Where("to_location IN ?", filter.To)
	}
	if filter.WithFreeSlots {
		query = query.Where("current_capacity < max_capacity")
	}

	return query.Order("id ASC")
}

func (s *Store) JoinRequests(ctx context.Context, rideID uint, states ...models.JoinRequestState) ([]models.JoinRequest, error) {
	query := s.db.WithContext(ctx).Where("ride_id = ?", rideID)
	if len(states) > 0 {
		query = query.Where("state IN ?", states)
	}
	var reqs []models.JoinRequest
	if err := query.Order("id ASC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) RequestsByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	err := s.db.WithContext(ctx).
		Where("requester_id = ?", userID).
		Order("id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) IsPassenger(ctx context.Context, rideID, userID uint) (bool, error) {
	return isPassenger(s.db.WithContext(ctx), rideID, userID)
}

func (s *Store) Messages(ctx context.Context, rideID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("ride_id = ?", rideID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Store) WithRide(ctx context.Context, rideID uint, fn func(tx carpool.RideTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ride models.Ride
		if err := lockRide(tx, rideID, &ride).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return carpool.ErrRideNotFound
			}
			return err
		}
		return fn(&rideTx{db: tx, ride: &ride})
	})
}

// lockRide loads the ride with SELECT ... FOR UPDATE.
func lockRide(tx *gorm.DB, rideID uint, ride *models.Ride) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(ride, rideID)
}

type rideTx struct {
	db   *gorm.DB
	ride *models.Ride
}

func (tx *rideTx) Ride() *models.Ride {
	return tx.ride
}

func (tx *rideTx) SaveRide() error {
	return tx.db.Save(tx.ride).Error
}

func (tx *rideTx) PendingRequest(userID uint) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := tx.db.
		Where("ride_id = ? AND requester_id = ? AND state = ?", tx.ride.ID, userID, models.JoinRequestPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, carpool.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (tx *rideTx) PendingRequests() ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	err := tx.db.
		Where("ride_id = ? AND state = ?", tx.ride.ID, models.JoinRequestPending).
		Order("id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (tx *rideTx) SaveJoinRequest(req *models.JoinRequest) error {
	return saveRequestErr(tx.db.Save(req).Error)
}

// saveRequestErr maps the one-pending-request index violation. It relies on
// TranslateError being set on the connection.
func saveRequestErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return carpool.ErrDuplicateRequest
	}
	return err
}

func (tx *rideTx) IsPassenger(userID uint) (bool, error) {
	return isPassenger(tx.db, tx.ride.ID, userID)
}

func (tx *rideTx) AppendMessage(msg *models.ChatMessage) error {
	return tx.db.Create(msg).Error
}

func isPassenger(db *gorm.DB, rideID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.JoinRequest{}).
		Where("ride_id = ? AND requester_id = ? AND state = ?", rideID, userID, models.JoinRequestAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
