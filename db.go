package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

func newPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	// The loader runs two sequential queries.
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return pool, nil
}

func nullInt(v *int32, def int) int {
	if v == nil {
		return def
	}
	return int(*v)
}

// loadSurveyPostgres reads the survey from the mid_persons and mid_trips tables, which
// mirror the CSV columns.
func loadSurveyPostgres(ctx context.Context, pool *pgxpool.Pool, regions map[string]int) ([]Person, []Trip, error) {
	rows, err := pool.Query(ctx,
		`SELECT "HP_ID_Lok", taet, multimodal, alter_gr, "ST_WOTAG", feiertag, mobil
		 FROM mid_persons
		 ORDER BY "HP_ID_Lok"`)
	if err != nil {
		return nil, nil, fmt.Errorf("query persons: %w", err)
	}

	var persons []Person
	for rows.Next() {
		var id int64
		var taet, multimodal, alterGr, weekday, holiday, mobil *int32
		if err := rows.Scan(&id, &taet, &multimodal, &alterGr, &weekday, &holiday, &mobil); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, Person{
			ID:         id,
			Employment: nullInt(taet, 0),
			Multimodal: nullInt(multimodal, 0),
			AgeGroup:   nullInt(alterGr, 0),
			Weekday:    nullInt(weekday, 0),
			Holiday:    nullInt(holiday, 0) == 1,
			NotMobile:  mobil != nil && *mobil == 0,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read persons: %w", err)
	}

	rows, err = pool.Query(ctx,
		`SELECT "HP_ID_Lok", "W_ID", "W_SO1", zweck, wegkm, "W_SZS", "W_SZM", "W_AZS", "W_AZM",
		        "W_FOLGETAG", wegmin_imp1, "GITTER_500m", "W_RBW"
		 FROM mid_trips
		 WHERE "W_RBW" IS DISTINCT FROM 1
		 ORDER BY "HP_ID_Lok", "W_ID"`)
	if err != nil {
		return nil, nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var personID int64
		var legIndex int32
		var tripContext, purpose, startH, startM, stopH, stopM, nextDay, rbw *int32
		var wegkm, duration *float64
		var cell *string
		if err := rows.Scan(&personID, &legIndex, &tripContext, &purpose, &wegkm, &startH, &startM, &stopH, &stopM,
			&nextDay, &duration, &cell, &rbw); err != nil {
			return nil, nil, fmt.Errorf("scan trip: %w", err)
		}

		t := Trip{
			PersonID:    personID,
			LegIndex:    int(legIndex),
			Context:     nullInt(tripContext, 0),
			Purpose:     nullInt(purpose, 0),
			DistanceKm:  math.NaN(),
			StartHour:   nullInt(startH, 99),
			StartMinute: nullInt(startM, 99),
			StopHour:    nullInt(stopH, 99),
			StopMinute:  nullInt(stopM, 99),
			NextDay:     nullInt(nextDay, 0) == 1,
			DurationMin: math.NaN(),
		}
		if wegkm != nil {
			t.DistanceKm = *wegkm
		}
		if duration != nil {
			t.DurationMin = *duration
		}
		if cell != nil {
			t.GridCell = strings.TrimSpace(*cell)
			t.RegionType = lookupRegion(regions, t.GridCell)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read trips: %w", err)
	}

	return persons, trips, nil
}
