// Package session holds the terminal client's mutable state between commands.
package session

import (
	"checkers/internal/client/api"
	"checkers/internal/core"
)

type Session struct {
	APIBaseURL       string
	CurrentGame      string
	LastVersion      uint64
	Client           *api.Client
	Verbose          bool
	CurrentGameState *core.GameResponse
}

func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
	}
}

func (s *Session) GetAPIBaseURL() string            { return s.APIBaseURL }
func (s *Session) SetAPIBaseURL(url string)         { s.APIBaseURL = url }
func (s *Session) GetCurrentGame() string           { return s.CurrentGame }
func (s *Session) GetLastVersion() uint64           { return s.LastVersion }
func (s *Session) SetLastVersion(v uint64)          { s.LastVersion = v }
func (s *Session) GetClient() *api.Client           { return s.Client }
func (s *Session) IsVerbose() bool                  { return s.Verbose }
func (s *Session) GetGameState() *core.GameResponse { return s.CurrentGameState }

// SetCurrentGame switches games and forgets the cached state of the old one
func (s *Session) SetCurrentGame(id string) {
	if id != s.CurrentGame {
		s.CurrentGameState = nil
		s.LastVersion = 0
	}
	s.CurrentGame = id
}

// SetGameState caches the latest state and the version it was read at
func (s *Session) SetGameState(g *core.GameResponse) {
	s.CurrentGameState = g
	if g != nil {
		s.LastVersion = g.Version
	}
}
