package storage

import (
	"strings"

	"backend/internal/logger"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const slugLength = 10

type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) (*SqliteStorage, error) {

	logger.Debug("initializing database...")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&Proposal{},
		&ActivityEvent{},
		&AccessLog{},
	)

	if err != nil {
		return nil, err
	}

	return &SqliteStorage{
		db: db,
	}, nil
}

func newSlug() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:slugLength]
}

func (s *SqliteStorage) CreateProposal(clientName, clientEmail string, config CalculatorConfig) (*Proposal, error) {
	logger.Debug("creating proposal...")

	proposal := &Proposal{
		Slug:        newSlug(),
		ClientName:  clientName,
		ClientEmail: NormalizeEmail(clientEmail),
		Config:      config,
		IsActive:    true,
	}

	if err := s.db.Create(proposal).Error; err != nil {
		return nil, err
	}

	logger.Debug("creating proposal... done")
	return proposal, nil
}

func (s *SqliteStorage) GetProposalBySlug(slug string) (*Proposal, error) {

	var proposal Proposal
	err := s.db.Where("slug = ?", slug).First(&proposal).Error
	if err != nil {
		return nil, err
	}

	return &proposal, nil
}

func (s *SqliteStorage) ListProposals() ([]*Proposal, error) {

	var proposals []*Proposal
	err := s.db.Order("created_at desc").Find(&proposals).Error
	if err != nil {
		return nil, err
	}

	return proposals, nil
}

func (s *SqliteStorage) DeactivateProposal(id int64) error {
	logger.Debug("deactivating proposal...")

	err := s.db.Model(&Proposal{}).Where("id = ?", id).Update("is_active", false).Error
	if err != nil {
		return err
	}

	logger.Debug("deactivating proposal... done")
	return nil
}

func (s *SqliteStorage) AppendActivity(event *ActivityEvent) error {

	if err := s.db.Create(event).Error; err != nil {
		return err
	}

	return nil
}

func (s *SqliteStorage) QueryActivity(slug string, limit int) ([]*ActivityEvent, error) {

	query := s.db.Order("created_at desc, id desc").Limit(limit)
	if slug != "" {
		query = query.Where("slug = ?", slug)
	}

	var events []*ActivityEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *SqliteStorage) AppendAccessLog(entry *AccessLog) error {

	if err := s.db.Create(entry).Error; err != nil {
		return err
	}

	return nil
}
