package monitor

import "time"

type Status struct {
	Store        bool      `json:"store"`
	Cache        bool      `json:"cache"`
	CacheEnabled bool      `json:"cache_enabled"`
	Uploads      bool      `json:"uploads"`
	LastCheck    time.Time `json:"last_check"`
}

// Healthy is true when every configured dependency answered.
func (s Status) Healthy() bool {
	return s.Store && s.Uploads && (!s.CacheEnabled || s.Cache)
}
