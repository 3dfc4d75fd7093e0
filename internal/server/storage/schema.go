package storage

import "time"

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID          string    `db:"game_id"`
	InitialLayout   string    `db:"initial_layout"`
	AnimationFrames int       `db:"animation_frames"`
	Promotion       string    `db:"promotion"`
	CanvasSize      int       `db:"canvas_size"`
	StartTimeUTC    time.Time `db:"start_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID      int64     `db:"move_id"`
	GameID      string    `db:"game_id"`
	MoveNumber  int       `db:"move_number"`
	Notation    string    `db:"notation"`
	LayoutAfter string    `db:"layout_after"`
	Side        int       `db:"side"`
	Captured    bool      `db:"captured"`
	Promoted    bool      `db:"promoted"`
	MoveTimeUTC time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_layout TEXT NOT NULL,
	animation_frames INTEGER NOT NULL DEFAULT 0,
	promotion TEXT NOT NULL DEFAULT 'none' CHECK(promotion IN ('none', 'back-rank')),
	canvas_size INTEGER NOT NULL,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	notation TEXT NOT NULL,
	layout_after TEXT NOT NULL,
	side INTEGER NOT NULL CHECK(side IN (0, 1)),
	captured INTEGER NOT NULL DEFAULT 0,
	promoted INTEGER NOT NULL DEFAULT 0,
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_start_time ON games(start_time_utc);
`
