package poll

import (
	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/errors"
	"pollpulse.io/pollpulse/lib/metrics"
)

//
// Vote admission runs as a checker pipeline; the first failing check
// rejects the vote. The rate limit comes before the poll lookup so a
// blocked fingerprint costs nothing, and the duplicate check comes
// after the active check so a closed poll reports closed rather than
// already-voted.
//
var DefaultSubmitVoteCheckerFuncs = []common.CheckerFunc{
	CheckFingerprintPresent,
	CheckRateLimit,
	CheckPollExists,
	CheckPollActive,
	CheckNotVoted,
	ApplyVote,
	RecordVote,
	BroadcastVote,
}

type VoteChecker struct {
	common.DefaultChecker

	Registry    *Registry
	PollID      string
	OptionID    string
	Fingerprint string

	Poll     *Poll
	Snapshot *Snapshot
}

// SubmitVote runs the admission pipeline for one vote request. The
// whole sequence is serialized per fingerprint, so the duplicate-vote
// and rate-limit invariants hold under concurrent submissions; votes
// from different fingerprints proceed in parallel.
func (r *Registry) SubmitVote(pollID, optionID, fingerprint string) (*Snapshot, error) {
	if len(fingerprint) > 0 {
		mu := r.fingerprintMutex(fingerprint)
		mu.Lock()
		defer mu.Unlock()
	}

	checker := &VoteChecker{
		DefaultChecker: common.DefaultChecker{Funcs: DefaultSubmitVoteCheckerFuncs},
		Registry:       r,
		PollID:         pollID,
		OptionID:       optionID,
		Fingerprint:    fingerprint,
	}

	if err := common.RunChecker(checker, common.DefaultDeferFunc); err != nil {
		metrics.Poll.VotesRejectedTotal.With("reason", rejectionReason(err)).Add(1)
		log.Debug("vote rejected", "poll", pollID, "option", optionID, "err", err)
		return nil, err
	}

	metrics.Poll.VotesAcceptedTotal.Add(1)

	return checker.Snapshot, nil
}

func CheckFingerprintPresent(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)
	if len(checker.Fingerprint) < 1 {
		return errors.ErrorMissingFingerprint
	}
	return nil
}

// CheckRateLimit rejects without consuming; the window entry is only
// recorded once the vote is applied.
func CheckRateLimit(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)

	allowed, resetTimeSeconds := checker.Registry.limiter.Check(checker.Fingerprint)
	if !allowed {
		return errors.ErrorRateLimited.Clone().SetData(errors.DataKeyResetTime, resetTimeSeconds)
	}
	return nil
}

func CheckPollExists(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)

	p, found := checker.Registry.getPoll(checker.PollID)
	if !found {
		return errors.ErrorPollNotFound
	}
	checker.Poll = p
	return nil
}

func CheckPollActive(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)
	if !checker.Poll.IsActive() {
		return errors.ErrorPollClosed
	}
	return nil
}

func CheckNotVoted(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)
	if checker.Registry.HasVoted(checker.PollID, checker.Fingerprint) {
		return errors.ErrorDuplicateVote
	}
	return nil
}

// ApplyVote increments the counters; an unknown option id leaves the
// poll untouched.
func ApplyVote(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)

	snapshot, err := checker.Poll.AddVote(checker.OptionID)
	if err != nil {
		return err
	}
	checker.Snapshot = snapshot
	return nil
}

func RecordVote(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)

	checker.Registry.recordVote(checker.PollID, checker.Fingerprint)
	checker.Registry.limiter.Consume(checker.Fingerprint)
	return nil
}

func BroadcastVote(c common.Checker, args ...interface{}) error {
	checker := c.(*VoteChecker)

	checker.Registry.publish(checker.PollID, Event{Type: EventVoteUpdate, Poll: checker.Snapshot})
	return nil
}

func rejectionReason(err error) string {
	e, ok := err.(*errors.Error)
	if !ok {
		return "unknown"
	}

	switch e.Code {
	case errors.ErrorMissingFingerprint.Code:
		return "missing-fingerprint"
	case errors.ErrorRateLimited.Code:
		return "rate-limited"
	case errors.ErrorPollNotFound.Code:
		return "poll-not-found"
	case errors.ErrorPollClosed.Code:
		return "poll-closed"
	case errors.ErrorDuplicateVote.Code:
		return "duplicate-vote"
	case errors.ErrorOptionNotFound.Code:
		return "option-not-found"
	}
	return "unknown"
}
