package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the store-level exclusion guarantee for slot
// booking. The EXCLUDE constraint is the fallback correctness mechanism:
// even if the advisory transaction lock is disabled or unavailable, two
// overlapping bookings in a blocking status can never both commit. The
// "blocking" status set here must stay in sync with bookings.BlockingStatuses;
// lapsed PENDING rows are moved out of it by the expiry sweeper.
func MigrateConstraints(db *gorm.DB) error {
	// Range exclusion needs btree_gist to combine the equality on court_id
	// with the overlap operator on the time range.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist;`).Error; err != nil {
		return err
	}

	err := db.Exec(`
		DO $$ BEGIN
			ALTER TABLE bookings
			ADD CONSTRAINT bookings_no_slot_overlap
			EXCLUDE USING gist (
				court_id WITH =,
				tstzrange(start_time, end_time) WITH &&
			) WHERE (status IN ('PENDING', 'PAID', 'IN_PROGRESS'));
		EXCEPTION
			WHEN duplicate_object THEN NULL;
			WHEN duplicate_table THEN NULL;
		END $$;
	`).Error
	if err != nil {
		return err
	}

	// Availability checks scan by court and interval.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_court_interval
		ON bookings (court_id, start_time, end_time)
		WHERE status IN ('PENDING', 'PAID', 'IN_PROGRESS');
	`).Error
	if err != nil {
		return err
	}

	// Requester-level daily conflict checks scan by user.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_user_interval
		ON bookings (user_id, start_time)
		WHERE status IN ('PENDING', 'PAID', 'IN_PROGRESS');
	`).Error
	if err != nil {
		return err
	}

	// The expiry sweeper walks lapsed PENDING rows.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_pending_expiry
		ON bookings (expires_at)
		WHERE status = 'PENDING';
	`).Error
	if err != nil {
		return err
	}

	return nil
}
