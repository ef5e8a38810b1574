package repository

import (
	"errors"
	"fmt"
	"log"
	"mio/models"

	"gorm.io/gorm"
)

// ProtocolRepository defines the interface for reading and seeding the
// protocol catalog.
type ProtocolRepository interface {
	CreateProtocol(protocol *models.Protocol) error
	GetProtocolByID(protocolID uint) (*models.Protocol, error)
	GetProtocolBySlug(slug string) (*models.Protocol, error)
	ListProtocols() ([]*models.Protocol, error)
	CountProtocols() (int64, error)
}

type protocolRepository struct {
	db *gorm.DB
}

// NewProtocolRepository creates a new instance of ProtocolRepository.
func NewProtocolRepository(db *gorm.DB) ProtocolRepository {
	return &protocolRepository{db: db}
}

// CreateProtocol inserts a catalog protocol together with its tasks.
func (r *protocolRepository) CreateProtocol(protocol *models.Protocol) error {
	if protocol == nil {
		log.Printf("ERROR: [ProtocolRepository] CreateProtocol: protocol cannot be nil")
		return errors.New("protocol cannot be nil")
	}
	err := r.db.Create(protocol).Error
	if err != nil {
		log.Printf("ERROR: [ProtocolRepository] Failed to create protocol '%s': %v", protocol.Slug, err)
		return fmt.Errorf("failed to create protocol '%s': %w", protocol.Slug, err)
	}
	log.Printf("INFO: [ProtocolRepository] Created protocol ID %d ('%s') with %d tasks.", protocol.ID, protocol.Slug, len(protocol.Tasks))
	return nil
}

// GetProtocolByID retrieves a protocol by its ID, preloading its tasks.
// Returns (nil, nil) when the protocol does not exist.
func (r *protocolRepository) GetProtocolByID(protocolID uint) (*models.Protocol, error) {
	var protocol models.Protocol
	err := r.db.Preload("Tasks").First(&protocol, protocolID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [ProtocolRepository] Protocol with ID %d not found.", protocolID)
			return nil, nil
		}
		log.Printf("ERROR: [ProtocolRepository] Failed to retrieve protocol ID %d: %v", protocolID, err)
		return nil, fmt.Errorf("failed to retrieve protocol ID %d: %w", protocolID, err)
	}
	return &protocol, nil
}

// GetProtocolBySlug retrieves a protocol by its catalog slug, preloading tasks.
func (r *protocolRepository) GetProtocolBySlug(slug string) (*models.Protocol, error) {
	var protocol models.Protocol
	err := r.db.Preload("Tasks").Where("slug = ?", slug).First(&protocol).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [ProtocolRepository] Protocol with slug '%s' not found.", slug)
			return nil, nil
		}
		log.Printf("ERROR: [ProtocolRepository] Failed to retrieve protocol '%s': %v", slug, err)
		return nil, fmt.Errorf("failed to retrieve protocol '%s': %w", slug, err)
	}
	return &protocol, nil
}

// ListProtocols retrieves all catalog protocols with their tasks.
func (r *protocolRepository) ListProtocols() ([]*models.Protocol, error) {
	var protocols []*models.Protocol
	err := r.db.Preload("Tasks").Order("id asc").Find(&protocols).Error
	if err != nil {
		log.Printf("ERROR: [ProtocolRepository] Failed to list protocols: %v", err)
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}
	return protocols, nil
}

// CountProtocols returns the number of catalog protocols. Used by the
// startup seeder to decide whether the catalog is empty.
func (r *protocolRepository) CountProtocols() (int64, error) {
	var count int64
	err := r.db.Model(&models.Protocol{}).Count(&count).Error
	if err != nil {
		log.Printf("ERROR: [ProtocolRepository] Failed to count protocols: %v", err)
		return 0, fmt.Errorf("failed to count protocols: %w", err)
	}
	return count, nil
}
