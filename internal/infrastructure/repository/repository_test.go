package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	"triage/internal/infrastructure/persistence/migrations"
	"triage/internal/infrastructure/persistence/models"
	"triage/internal/infrastructure/persistence/seeds"
	db "triage/internal/shared/db"
	apperrors "triage/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.MigrateTriageTables(gdb))
	require.NoError(t, seeds.SeedLookupTables(gdb))
	return gdb
}

func intPtr(v int) *int { return &v }

func TestSeedLookupTables_Idempotent(t *testing.T) {
	gdb := setupTestDB(t)
	require.NoError(t, seeds.SeedLookupTables(gdb))

	var states, priorities int64
	require.NoError(t, gdb.Model(&models.StateTypeModel{}).Count(&states).Error)
	require.NoError(t, gdb.Model(&models.PriorityTypeModel{}).Count(&priorities).Error)
	assert.Equal(t, int64(7), states)
	assert.Equal(t, int64(4), priorities)
}

func TestPatientRepository_GetByID(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPatientRepository(gdb)
	ctx := context.Background()
	require.NoError(t, gdb.Create(&models.PatientModel{ID: 10, Name: "Maria", Age: intPtr(34), PregnantIndicator: "S"}).Error)
	require.NoError(t, gdb.Create(&models.PatientModel{ID: 11, Name: "João"}).Error)

	t.Run("found", func(t *testing.T) {
		p, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "Maria", p.Name())
		assert.Equal(t, 34, p.Age())
		assert.True(t, p.IsPregnant())
	})

	t.Run("missing age defaults to zero", func(t *testing.T) {
		p, err := repo.GetByID(ctx, 11)
		require.NoError(t, err)
		assert.Zero(t, p.Age())
		assert.False(t, p.IsPregnant())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99)
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestStaffRepository_GetByID(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewStaffRepository(gdb)
	ctx := context.Background()
	require.NoError(t, gdb.Create(&models.StaffModel{ID: 1, Name: "Dra. Ana", RoleID: intPtr(seeds.DoctorRoleID)}).Error)
	require.NoError(t, gdb.Create(&models.StaffModel{ID: 2, Name: "Carlos", RoleID: intPtr(2)}).Error)
	require.NoError(t, gdb.Create(&models.StaffModel{ID: 3, Name: "Sem função"}).Error)

	doctor, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, doctor.IsDoctor())

	nurse, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, nurse.IsDoctor())
	assert.Equal(t, "ENFERMEIRO", nurse.RoleName())

	noRole, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.False(t, noRole.IsDoctor())

	_, err = repo.GetByID(ctx, 42)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestTicketRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewTicketRepository(gdb)
	ctx := context.Background()
	patient := triage.ReconstructPatient(10, "Ana", 30, false)

	first, err := triage.NewTicket(1000, patient)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))
	assert.NotZero(t, first.ID())

	second, err := triage.NewTicket(2, patient)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))
	assert.Greater(t, second.ID(), first.ID())

	done, err := triage.NewCancelledTicket(3, patient)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, done))

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, 1, got.Number())
		assert.Equal(t, vo.PriorityNormal, got.Priority())
		assert.Equal(t, vo.StateCreated, got.State())

		_, err = repo.GetByID(ctx, 9999)
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("active tickets ordered by id", func(t *testing.T) {
		active, err := repo.FindActiveByPatient(ctx, 10)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, first.ID(), active[0].ID())
		assert.Equal(t, second.ID(), active[1].ID())
	})

	t.Run("update writes zero priority code", func(t *testing.T) {
		require.NoError(t, second.Escalate())
		require.NoError(t, repo.Save(ctx, second))

		emergency, err := repo.CountActiveByPriority(ctx, vo.PriorityEmergency)
		require.NoError(t, err)
		assert.Equal(t, int64(1), emergency)

		normal, err := repo.CountActiveByPriority(ctx, vo.PriorityNormal)
		require.NoError(t, err)
		assert.Equal(t, int64(1), normal, "cancelled ticket is not counted")
	})

	t.Run("find by number and patient", func(t *testing.T) {
		got, err := repo.FindByNumberAndPatient(ctx, 1, 10)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.ID(), got.ID())

		got, err = repo.FindByNumberAndPatient(ctx, 1, 11)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStateHistoryRepository_AppendIsIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewStateHistoryRepository(gdb)
	runner := db.NewUnitOfWorkRunner(gdb)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 123_456_789, time.UTC)

	for i := 0; i < 2; i++ {
		_, err := runner.Run(ctx, "und_atd1", func(ctx context.Context, _ *db.UnitOfWork) error {
			return repo.Append(ctx, triage.NewStateRecord(100, vo.StateCancelled, at))
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Append(ctx, triage.NewStateRecord(100, vo.StateCreated, at)))

	var count int64
	require.NoError(t, gdb.Model(&models.TicketStateModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestClockEntryRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewClockEntryRepository(gdb)
	ctx := context.Background()
	in := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

	open, err := repo.FindOpenByStaff(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, open)

	older, err := triage.NewClockEntry(1, 5, in)
	require.NoError(t, err)
	newer, err := triage.NewClockEntry(2, 5, in.Add(time.Hour))
	require.NoError(t, err)
	other, err := triage.NewClockEntry(3, 6, in)
	require.NoError(t, err)
	for _, e := range []*triage.ClockEntry{older, newer, other} {
		require.NoError(t, repo.Create(ctx, e))
	}

	onDuty, err := repo.CountOnDuty(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), onDuty)

	open, err = repo.FindOpenByStaff(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, int64(2), open.ID(), "most recently opened entry")

	require.NoError(t, open.Close(in.Add(9*time.Hour)))
	require.NoError(t, repo.Update(ctx, open))

	onDuty, err = repo.CountOnDuty(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), onDuty)

	open, err = repo.FindOpenByStaff(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, int64(1), open.ID())
}
