package domain

import "time"

type CheckersGame struct {
	ID           int64
	SessionUUID  string
	PlayerHash   string
	RoomHash     string
	Preset       string
	HumanPlayer  string
	TopPlayer    string
	Result       string
	ResultMethod string
	Moves        []string
	Log          []byte
	FinalBoard   string
	TurnCount    int
	Captured     int
	Lost         int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
	BotLatency   time.Duration
}

type CheckersProfile struct {
	PlayerHash      string
	RoomHash        string
	PreferredPreset string
	Rating          int
	GamesPlayed     int
	Wins            int
	Losses          int
	Draws           int
	Streak          int
	StreakType      string
	LastPreset      string
	LastPlayedAt    time.Time
	UpdatedAt       time.Time
	CreatedAt       time.Time
}
