package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three tables when they are missing. showtimes.movie_id
// carries an index but no foreign key: a showtime may point at a movie that
// does not exist.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title          VARCHAR(255)    NOT NULL,
		description    TEXT            NOT NULL,
		poster_url     VARCHAR(1024)   NOT NULL,
		trailer_url    VARCHAR(1024)   NULL,
		rating         VARCHAR(16)     NOT NULL,
		duration       INT             NOT NULL,
		is_coming_soon BOOLEAN         NOT NULL DEFAULT FALSE,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id BIGINT UNSIGNED NOT NULL,
		showtime DATETIME        NOT NULL,
		price    DECIMAL(10,2)   NOT NULL,
		PRIMARY KEY (id),
		KEY idx_showtimes_movie_id (movie_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name       VARCHAR(255)    NOT NULL,
		email      VARCHAR(255)    NOT NULL,
		message    TEXT            NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema runs the CREATE TABLE IF NOT EXISTS statements in order.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
