// ABOUTME: Setting, Chat, Bio, OneRepMax, and Versioning models.
// ABOUTME: Settings are singleton-per-type; the rest are append-mostly logs.
package models

import "time"

// Well-known setting types.
const (
	SettingLanguage             = "language"
	SettingTheme                = "theme"
	SettingUnitSystem           = "unitSystem"
	SettingAdvancedSettings     = "advancedSettings"
	SettingExerciseImages       = "exerciseImageDisplay"
	SettingHealthConnect        = "healthConnectEnabled"
	SettingOpenAIKey            = "openaiApiKey"
	SettingGeminiKey            = "geminiApiKey"
	SettingExerciseReplacements = "exerciseReplacements"
)

// SecretSettingTypes lists setting types that hold credentials and must
// never be exported in a database dump.
var SecretSettingTypes = []string{SettingOpenAIKey, SettingGeminiKey}

// IsSecretSetting reports whether a setting type holds a credential.
func IsSecretSetting(settingType string) bool {
	for _, t := range SecretSettingTypes {
		if t == settingType {
			return true
		}
	}
	return false
}

// Setting is a singleton-per-Type key/value row; adds upsert by Type.
type Setting struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// ChatSender distinguishes user from assistant messages.
type ChatSender string

const (
	ChatUser      ChatSender = "user"
	ChatAssistant ChatSender = "assistant"
)

// Chat is one message in the assistant conversation log.
type Chat struct {
	ID        int64      `json:"id"`
	Message   string     `json:"message"`
	Sender    ChatSender `json:"sender"`
	Misc      string     `json:"misc,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Bio is an append-only log of the user's self-description used for
// AI context; the latest row wins.
type Bio struct {
	ID        int64      `json:"id"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// OneRepMax stores the estimated one-rep max per exercise; adds upsert
// by ExerciseID.
type OneRepMax struct {
	ID         int64      `json:"id"`
	ExerciseID int64      `json:"exerciseId"`
	Weight     float64    `json:"weight"`
	CreatedAt  time.Time  `json:"createdAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// Versioning records each applied migration's semantic version; the
// highest version gates idempotent migrations at startup.
type Versioning struct {
	ID        int64      `json:"id"`
	Version   string     `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
