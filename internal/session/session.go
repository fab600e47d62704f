package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashevtsov/interview-partner/internal/feedback"
)

// Role is the interview track the candidate practices for.
type Role string

const (
	RoleSales      Role = "sales"
	RoleEngineer   Role = "engineer"
	RoleRetail     Role = "retail"
	RoleBehavioral Role = "behavioral"
)

// Persona is a candidate behavior profile. It selects a pure text transform
// applied to every raw answer before the dialogue controller sees it.
type Persona string

const (
	PersonaNormal    Persona = "normal"
	PersonaConfused  Persona = "confused"
	PersonaEfficient Persona = "efficient"
	PersonaChatty    Persona = "chatty"
	PersonaEdge      Persona = "edge"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// Roles returns the closed set of supported interview roles.
func Roles() []Role {
	return []Role{RoleSales, RoleEngineer, RoleRetail, RoleBehavioral}
}

// Personas returns the closed set of supported candidate personas.
func Personas() []Persona {
	return []Persona{PersonaNormal, PersonaConfused, PersonaEfficient, PersonaChatty, PersonaEdge}
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// Label returns a human readable name for menus and reports.
func (r Role) Label() string {
	switch r {
	case RoleSales:
		return "Sales Representative"
	case RoleEngineer:
		return "Software Engineer"
	case RoleRetail:
		return "Retail Associate"
	case RoleBehavioral:
		return "General Behavioral Interview"
	default:
		return string(r)
	}
}

// Valid reports whether the persona belongs to the closed set.
func (p Persona) Valid() bool {
	for _, known := range Personas() {
		if p == known {
			return true
		}
	}
	return false
}

// Description explains the behavior the persona simulates.
func (p Persona) Description() string {
	switch p {
	case PersonaNormal:
		return "Regular candidate behavior."
	case PersonaConfused:
		return "Hesitant, unsure, asks clarifications."
	case PersonaEfficient:
		return "Short, minimal answers."
	case PersonaChatty:
		return "Long, emotional answers."
	case PersonaEdge:
		return "Unpredictable, broken English."
	default:
		return string(p)
	}
}

// Turn is one utterance in conversation order, owned by its session.
type Turn struct {
	Speaker Speaker `json:"role"`
	Text    string  `json:"content"`
}

// Record is the persisted unit for one finished interview attempt. Records
// are append-only: once saved they are never updated in place.
type Record struct {
	SessionID       string           `json:"session_id"`
	Role            Role             `json:"role"`
	Persona         Persona          `json:"persona"`
	InputMode       string           `json:"input_mode"`
	TimestampStart  string           `json:"timestamp_start"`
	DurationSeconds int              `json:"duration_seconds"`
	Messages        []Turn           `json:"messages"`
	Feedback        *feedback.Record `json:"feedback,omitempty"`
	SavedAt         string           `json:"saved_at,omitempty"`
}

// NewSessionID builds a sortable session identifier. The timestamp prefix
// keeps directory listings readable, the uuid suffix keeps concurrent
// sessions collision free.
func NewSessionID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s", now.Format("20060102_150405"), suffix)
}
