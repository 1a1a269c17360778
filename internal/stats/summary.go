package stats

import "time"

// Summary is the ledger as shown to the user.
type Summary struct {
	LastFetch     *time.Time
	TotalFetched  int
	Passed        int
	VisaBlocked   int
	SeniorBlocked int
	MatchFailed   int
	Applied       int
	Screened      int
	// PassRate is a percentage; it is zero when nothing has been screened.
	PassRate float64
	Runs     int
}

// Summary loads the ledger and the applied count.
func (t *Tracker) Summary() (Summary, error) {
	ledger, err := t.Load()
	if err != nil {
		return Summary{}, err
	}
	applied, err := t.AppliedCount()
	if err != nil {
		t.logger.Warn().Err(err).Msg("could not count applied jobs")
		applied = 0
	}

	s := Summary{
		TotalFetched:  ledger.TotalFetched,
		Passed:        ledger.TotalPassedScreening,
		VisaBlocked:   ledger.TotalVisaBlocked,
		SeniorBlocked: ledger.TotalSeniorBlocked,
		MatchFailed:   ledger.TotalMatchFailed,
		Applied:       applied,
		Runs:          len(ledger.History),
	}
	s.Screened = s.Passed + s.VisaBlocked + s.SeniorBlocked + s.MatchFailed
	if s.Screened > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Screened) * 100
	}
	if ledger.LastFetchTime != nil {
		if ts, err := ParseTimestamp(*ledger.LastFetchTime); err == nil {
			s.LastFetch = &ts
		}
	}
	return s, nil
}
