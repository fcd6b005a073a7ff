package models

import "time"

// CareType names what happened to a plant (events) or what should happen (tasks).
type CareType string

const (
	CareWater     CareType = "water"
	CareFertilize CareType = "fertilize"
	CareNote      CareType = "note"
	CarePhoto     CareType = "photo"
)

// ScheduledTypes are the care types that carry a cadence and produce tasks.
var ScheduledTypes = []CareType{CareWater, CareFertilize}

func (t CareType) Valid() bool {
	switch t {
	case CareWater, CareFertilize, CareNote, CarePhoto:
		return true
	}
	return false
}

// Scheduled reports whether tasks can exist for this type.
func (t CareType) Scheduled() bool {
	return t == CareWater || t == CareFertilize
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Plant struct {
	ID                int        `json:"id"`
	UserID            int        `json:"userId"`
	Nickname          string     `json:"nickname"`
	SpeciesScientific string     `json:"speciesScientific,omitempty"`
	SpeciesCommon     string     `json:"speciesCommon,omitempty"`
	WaterEvery        string     `json:"waterEvery,omitempty"`
	FertEvery         string     `json:"fertEvery,omitempty"`
	CareNotes         string     `json:"careNotes,omitempty"`
	LastWateredAt     *time.Time `json:"lastWateredAt,omitempty"`
	LastFertilizedAt  *time.Time `json:"lastFertilizedAt,omitempty"`
	ArchivedAt        *time.Time `json:"archivedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Cadence returns the interval string configured for a care type.
func (p Plant) Cadence(t CareType) string {
	switch t {
	case CareWater:
		return p.WaterEvery
	case CareFertilize:
		return p.FertEvery
	}
	return ""
}

// LastAt returns the last known occurrence of a care type, if any.
func (p Plant) LastAt(t CareType) *time.Time {
	switch t {
	case CareWater:
		return p.LastWateredAt
	case CareFertilize:
		return p.LastFertilizedAt
	}
	return nil
}

type CareEvent struct {
	ID        int       `json:"id"`
	PlantID   int       `json:"plantId"`
	Type      string    `json:"type"`
	Note      *string   `json:"note"`
	ImageURL  *string   `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

type Task struct {
	ID           int        `json:"id"`
	PlantID      int        `json:"plantId"`
	PlantName    string     `json:"plantName"`
	Type         CareType   `json:"type"`
	Due          string     `json:"due"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	SnoozeReason string     `json:"snoozeReason,omitempty"`
}

// Open reports whether the task still awaits completion.
func (t Task) Open() bool {
	return t.CompletedAt == nil
}

type DayWeather struct {
	Date                string  `json:"date"`
	TempMax             float64 `json:"tempMax"`
	TempMin             float64 `json:"tempMin"`
	PrecipitationChance float64 `json:"precipitationChance"`
}

type DayET0 struct {
	Date string  `json:"date"`
	ET0  float64 `json:"et0"`
}

type DayForecast struct {
	Date    string      `json:"date"`
	Tasks   []Task      `json:"tasks"`
	Weather *DayWeather `json:"weather,omitempty"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type WaterWeather struct {
	Day   string  `json:"day"`
	ET0   float64 `json:"et0"`
	Water int     `json:"water"`
}

type PlantStreak struct {
	ID        int    `json:"id"`
	PlantName string `json:"plantName"`
	Streak    int    `json:"streak"`
}

type AttentionItem struct {
	ID        int      `json:"id"`
	PlantName string   `json:"plantName"`
	Type      CareType `json:"type"`
	Due       string   `json:"due"`
}

type NeglectedPlant struct {
	ID        int    `json:"id"`
	PlantName string `json:"plantName"`
	Days      int    `json:"days"`
}

type Dashboard struct {
	Completion     int              `json:"completion"`
	TotalDone      int              `json:"totalDone"`
	TotalExpected  int              `json:"totalExpected"`
	Hist           []DayCount       `json:"hist"`
	OverdueTrend   []DayCount       `json:"overdueTrend"`
	WaterWeather   []WaterWeather   `json:"waterWeather"`
	Streak         int              `json:"streak"`
	LongestStreaks []PlantStreak    `json:"longestStreaks"`
	Plants         int              `json:"plants"`
	Attention      []AttentionItem  `json:"attention"`
	Neglected      []NeglectedPlant `json:"neglected"`
}

// CarePlan is a proposed cadence from the suggestion provider.
type CarePlan struct {
	WaterEvery string `json:"waterEvery"`
	FertEvery  string `json:"fertEvery"`
	Notes      string `json:"notes"`
}

type Species struct {
	ID             int    `json:"id"`
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
	Watering       string `json:"watering,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

type CreatePlantRequest struct {
	Nickname          string `json:"nickname"`
	SpeciesScientific string `json:"speciesScientific,omitempty"`
	SpeciesCommon     string `json:"speciesCommon,omitempty"`
	WaterEvery        string `json:"waterEvery,omitempty"`
	FertEvery         string `json:"fertEvery,omitempty"`
	CareNotes         string `json:"careNotes,omitempty"`
}

type UpdatePlantRequest struct {
	Nickname          *string `json:"nickname,omitempty"`
	SpeciesScientific *string `json:"speciesScientific,omitempty"`
	SpeciesCommon     *string `json:"speciesCommon,omitempty"`
	WaterEvery        *string `json:"waterEvery,omitempty"`
	FertEvery         *string `json:"fertEvery,omitempty"`
	CareNotes         *string `json:"careNotes,omitempty"`
}

type CreateEventRequest struct {
	Type     string `json:"type"`
	Note     string `json:"note,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SnoozeRequest keeps Days loosely typed; clients send numbers, strings or nothing.
type SnoozeRequest struct {
	Days   any    `json:"days"`
	Reason string `json:"reason,omitempty"`
}

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
