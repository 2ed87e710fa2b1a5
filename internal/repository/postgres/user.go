package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"starry-api/internal/logger"
	"starry-api/internal/repository/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const userColumns = `id, telegram_handle, name, email, password_hash,
	birth_datetime, birth_latitude, birth_longitude, birth_place_name, birth_timezone,
	sun_sign, moon_sign, ascendant_sign, created_at, updated_at`

// CreateUser inserts a new user. The handle is expected to be normalized
// (lowercase, no leading "@") by the caller.
func (p *PostgresDB) CreateUser(handle, name, email, passwordHash string, birth *db.BirthData, profile *db.AstrologyProfile) (*db.User, error) {
	userID := uuid.New().String()

	var (
		birthDatetime  sql.NullTime
		birthLatitude  sql.NullFloat64
		birthLongitude sql.NullFloat64
		birthPlaceName sql.NullString
		birthTimezone  sql.NullString
		sunSign        sql.NullString
		moonSign       sql.NullString
		ascendantSign  sql.NullString
	)

	if birth != nil {
		birthDatetime = sql.NullTime{Time: birth.Datetime, Valid: !birth.Datetime.IsZero()}
		if birth.Latitude != nil {
			birthLatitude = sql.NullFloat64{Float64: *birth.Latitude, Valid: true}
		}
		if birth.Longitude != nil {
			birthLongitude = sql.NullFloat64{Float64: *birth.Longitude, Valid: true}
		}
		birthPlaceName = sql.NullString{String: birth.PlaceName, Valid: birth.PlaceName != ""}
		birthTimezone = sql.NullString{String: birth.Timezone, Valid: birth.Timezone != ""}
	}
	if profile != nil {
		sunSign = sql.NullString{String: profile.SunSign, Valid: profile.SunSign != ""}
		moonSign = sql.NullString{String: profile.MoonSign, Valid: profile.MoonSign != ""}
		ascendantSign = sql.NullString{String: profile.AscendantSign, Valid: profile.AscendantSign != ""}
	}

	query := `
	INSERT INTO users (id, telegram_handle, name, email, password_hash,
		birth_datetime, birth_latitude, birth_longitude, birth_place_name, birth_timezone,
		sun_sign, moon_sign, ascendant_sign)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING ` + userColumns

	row := p.conn.QueryRow(query, userID, handle, name, email, passwordHash,
		birthDatetime, birthLatitude, birthLongitude, birthPlaceName, birthTimezone,
		sunSign, moonSign, ascendantSign)

	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, db.ErrDuplicateHandle
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"handle": handle, "user_id": userID}).Info("Created new user")
	return user, nil
}

// GetUserByHandle retrieves a user by normalized telegram handle
func (p *PostgresDB) GetUserByHandle(handle string) (*db.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_handle = $1`
	user, err := scanUser(p.conn.QueryRow(query, handle))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by id
func (p *PostgresDB) GetUserByID(id string) (*db.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(p.conn.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// UpdateUserProfile applies the non-nil fields of update. Handle and
// password are immutable through this path.
func (p *PostgresDB) UpdateUserProfile(userID string, update db.ProfileUpdate) (*db.User, error) {
	current, err := p.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		current.Name = *update.Name
	}
	if update.Email != nil {
		current.Email = *update.Email
	}
	if update.BirthData != nil {
		current.BirthData = update.BirthData
	}
	if update.AstrologyProfile != nil {
		current.AstrologyProfile = update.AstrologyProfile
	}

	var (
		birthDatetime  sql.NullTime
		birthLatitude  sql.NullFloat64
		birthLongitude sql.NullFloat64
		birthPlaceName sql.NullString
		birthTimezone  sql.NullString
		sunSign        sql.NullString
		moonSign       sql.NullString
		ascendantSign  sql.NullString
	)
	if b := current.BirthData; b != nil {
		birthDatetime = sql.NullTime{Time: b.Datetime, Valid: !b.Datetime.IsZero()}
		if b.Latitude != nil {
			birthLatitude = sql.NullFloat64{Float64: *b.Latitude, Valid: true}
		}
		if b.Longitude != nil {
			birthLongitude = sql.NullFloat64{Float64: *b.Longitude, Valid: true}
		}
		birthPlaceName = sql.NullString{String: b.PlaceName, Valid: b.PlaceName != ""}
		birthTimezone = sql.NullString{String: b.Timezone, Valid: b.Timezone != ""}
	}
	if a := current.AstrologyProfile; a != nil {
		sunSign = sql.NullString{String: a.SunSign, Valid: a.SunSign != ""}
		moonSign = sql.NullString{String: a.MoonSign, Valid: a.MoonSign != ""}
		ascendantSign = sql.NullString{String: a.AscendantSign, Valid: a.AscendantSign != ""}
	}

	query := `
	UPDATE users SET name = $2, email = NULLIF($3, ''),
		birth_datetime = $4, birth_latitude = $5, birth_longitude = $6,
		birth_place_name = $7, birth_timezone = $8,
		sun_sign = $9, moon_sign = $10, ascendant_sign = $11,
		updated_at = now()
	WHERE id = $1
	RETURNING ` + userColumns

	row := p.conn.QueryRow(query, userID, current.Name, current.Email,
		birthDatetime, birthLatitude, birthLongitude, birthPlaceName, birthTimezone,
		sunSign, moonSign, ascendantSign)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	logger.Log.WithField("user_id", userID).Info("Updated user profile")
	return user, nil
}

// scanUser scans a full user row, folding nullable birth/profile columns
// into their optional structs.
func scanUser(row *sql.Row) (*db.User, error) {
	var (
		user           db.User
		email          sql.NullString
		birthDatetime  sql.NullTime
		birthLatitude  sql.NullFloat64
		birthLongitude sql.NullFloat64
		birthPlaceName sql.NullString
		birthTimezone  sql.NullString
		sunSign        sql.NullString
		moonSign       sql.NullString
		ascendantSign  sql.NullString
	)

	err := row.Scan(&user.ID, &user.TelegramHandle, &user.Name, &email, &user.PasswordHash,
		&birthDatetime, &birthLatitude, &birthLongitude, &birthPlaceName, &birthTimezone,
		&sunSign, &moonSign, &ascendantSign, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.Email = email.String

	if birthDatetime.Valid || birthLatitude.Valid || birthPlaceName.Valid || birthTimezone.Valid {
		birth := &db.BirthData{
			PlaceName: birthPlaceName.String,
			Timezone:  birthTimezone.String,
		}
		if birthDatetime.Valid {
			birth.Datetime = birthDatetime.Time.UTC()
		}
		if birthLatitude.Valid {
			lat := birthLatitude.Float64
			birth.Latitude = &lat
		}
		if birthLongitude.Valid {
			lon := birthLongitude.Float64
			birth.Longitude = &lon
		}
		user.BirthData = birth
	}

	if sunSign.Valid || moonSign.Valid || ascendantSign.Valid {
		user.AstrologyProfile = &db.AstrologyProfile{
			SunSign:       sunSign.String,
			MoonSign:      moonSign.String,
			AscendantSign: ascendantSign.String,
		}
	}

	return &user, nil
}
