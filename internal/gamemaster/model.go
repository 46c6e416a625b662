package gamemaster

import (
	"fmt"
)

// ============================
// 🔷 GORM models

type GameMaster struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

func (GameMaster) TableName() string { return "game_masters" }

// EventGameMaster links an event to one of its game masters.
type EventGameMaster struct {
	EventID      uint `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	GameMasterID uint `gorm:"primaryKey;autoIncrement:false;index" json:"game_master_id"`

	GameMaster GameMaster `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (EventGameMaster) TableName() string { return "event_game_masters" }

func Models() []interface{} {
	return []interface{}{&GameMaster{}, &EventGameMaster{}}
}

// ForEvent is the desired game master list of one stored event.
type ForEvent struct {
	EventID uint
	Names   []string
}

// ============================
// ❌ Errors

// GamesDoNotExistError means some of the requested events are not stored.
type GamesDoNotExistError struct {
	Requested int
	Existing  int
}

func (e *GamesDoNotExistError) Error() string {
	return fmt.Sprintf("only %d of %d events exist", e.Existing, e.Requested)
}

type GameDoesNotExistError struct {
	EventID uint
}

func (e *GameDoesNotExistError) Error() string {
	return fmt.Sprintf("event %d does not exist", e.EventID)
}

type GameMasterDoesNotExistError struct {
	GameMasterID uint
}

func (e *GameMasterDoesNotExistError) Error() string {
	return fmt.Sprintf("game master %d does not exist", e.GameMasterID)
}
