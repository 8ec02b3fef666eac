package game

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Survey is a time-limited handle that biases extraction yield toward a set
// of deposits at one asteroid waypoint.
type Survey struct {
	Signature      string
	WaypointSymbol string
	Deposits       []string
	Size           string
	Expiration     time.Time
}

// HasDeposit reports whether the survey covers the given resource.
func (s *Survey) HasDeposit(symbol string) bool {
	for _, deposit := range s.Deposits {
		if deposit == symbol {
			return true
		}
	}
	return false
}

// SurveyRegistry keeps live surveys keyed by (waypoint, signature).
// Entries expire with the survey itself; go-cache evicts them lazily on
// read, which matches the prune-when-consulted contract.
type SurveyRegistry struct {
	cache *gocache.Cache
}

// NewSurveyRegistry creates an empty registry. Background cleanup is
// disabled; expiry is enforced on access.
func NewSurveyRegistry() *SurveyRegistry {
	return &SurveyRegistry{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func surveyKey(waypoint, signature string) string {
	return waypoint + "/" + signature
}

// Add stores a survey until its expiration.
func (r *SurveyRegistry) Add(survey *Survey) {
	ttl := time.Until(survey.Expiration)
	if ttl <= 0 {
		return
	}
	r.cache.Set(surveyKey(survey.WaypointSymbol, survey.Signature), survey, ttl)
}

// Get returns the live survey for (waypoint, signature), if any.
func (r *SurveyRegistry) Get(waypoint, signature string) (*Survey, bool) {
	value, found := r.cache.Get(surveyKey(waypoint, signature))
	if !found {
		return nil, false
	}
	return value.(*Survey), true
}

// Drop removes a survey regardless of expiry (e.g. exhausted deposits).
func (r *SurveyRegistry) Drop(waypoint, signature string) {
	r.cache.Delete(surveyKey(waypoint, signature))
}

// AtWaypoint lists the live surveys recorded for one asteroid waypoint.
func (r *SurveyRegistry) AtWaypoint(waypoint string) []*Survey {
	var surveys []*Survey
	prefix := waypoint + "/"
	for key, item := range r.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if item.Expired() {
			continue
		}
		surveys = append(surveys, item.Object.(*Survey))
	}
	return surveys
}
