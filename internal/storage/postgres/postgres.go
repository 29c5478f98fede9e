// Package postgres is the PostgreSQL implementation of storage.Storage,
// built on GORM. It is selected with storage.driver: postgres and mirrors
// the sqlite package statement for statement.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/phone-roster/internal/config"
	"github.com/aanand-mishra/phone-roster/internal/storage"
	"github.com/aanand-mishra/phone-roster/internal/types"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var _ storage.Storage = (*Postgres)(nil)

// studentRow is the GORM model for the students table.
// updated_at is written explicitly by UpdatePhone, so GORM's automatic
// timestamp tracking is switched off.
type studentRow struct {
	ID          uint       `gorm:"primaryKey"`
	Name        string     `gorm:"type:varchar(100);not null"`
	RegNumber   string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	PhoneNumber *string    `gorm:"type:varchar(20);index"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false"`
}

func (studentRow) TableName() string { return "students" }

func (r studentRow) toStudent() types.Student {
	return types.Student{
		Name:        r.Name,
		RegNumber:   r.RegNumber,
		PhoneNumber: r.PhoneNumber,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Postgres is a Record Store backed by a PostgreSQL database.
type Postgres struct {
	DB   *gorm.DB
	host string
	now  func() time.Time
}

// New connects with the settings in cfg.Storage.Postgres. The connection is
// verified within cfg.Storage.ConnectTimeout; failures are
// *storage.StoreInitError.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	pg := cfg.Storage.Postgres
	timeout := cfg.Storage.ConnectTimeout

	db, err := gorm.Open(pgdriver.Open(pg.DSN(timeout)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, storage.NewStoreInitError(pg.Host, fmt.Errorf("postgres.New: open: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, storage.NewStoreInitError(pg.Host, fmt.Errorf("postgres.New: pool: %w", err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, storage.NewStoreInitError(pg.Host, fmt.Errorf("postgres.New: ping: %w", err))
	}

	return &Postgres{DB: db, host: pg.Host, now: time.Now}, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Initialize migrates the table and seeds the roster when it is empty.
func (p *Postgres) Initialize(ctx context.Context) error {
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&studentRow{}); err != nil {
			return fmt.Errorf("Initialize: migrate: %w", err)
		}

		var count int64
		if err := tx.Model(&studentRow{}).Count(&count).Error; err != nil {
			return fmt.Errorf("Initialize: count: %w", err)
		}
		if count > 0 {
			return nil
		}

		entries := storage.Roster()
		rows := make([]studentRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, studentRow{Name: e.Name, RegNumber: e.RegNumber})
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reg_number"}},
			DoNothing: true,
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("Initialize: seed: %w", err)
		}
		return nil
	})
	if err != nil {
		return storage.NewStoreInitError(p.host, err)
	}
	return nil
}

func (p *Postgres) FindByRegNumber(ctx context.Context, reg string) (types.Student, error) {
	var row studentRow
	err := p.DB.WithContext(ctx).Where("reg_number = ?", reg).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("FindByRegNumber: %w", err)
	}
	return row.toStudent(), nil
}

func (p *Postgres) FindOwnerOfPhone(ctx context.Context, phone string) (types.Student, error) {
	var row studentRow
	err := p.DB.WithContext(ctx).Where("phone_number = ?", phone).Order("id").Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("FindOwnerOfPhone: %w", err)
	}
	return row.toStudent(), nil
}

// ListAll orders by name under the "C" collation so the order matches
// SQLite's byte-wise BINARY collation regardless of the database locale.
func (p *Postgres) ListAll(ctx context.Context) ([]types.Student, error) {
	var rows []studentRow
	err := p.DB.WithContext(ctx).
		Order(`name COLLATE "C"`).
		Order("reg_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}

	students := make([]types.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

// UpdatePhone is the same single conditional UPDATE as the SQLite store.
func (p *Postgres) UpdatePhone(ctx context.Context, reg, phone string) (bool, error) {
	res := p.DB.WithContext(ctx).
		Model(&studentRow{}).
		Where("reg_number = ?", reg).
		Where("NOT EXISTS (SELECT 1 FROM students AS other WHERE other.phone_number = ? AND other.reg_number <> ?)", phone, reg).
		Updates(map[string]any{
			"phone_number": phone,
			"updated_at":   p.now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("UpdatePhone: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
