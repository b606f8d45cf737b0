package reviews

// ScoreAdjuster computes a user's next safety score from the current one
// and an incoming review. It runs inside the review's transaction, under
// a row lock on the reviewed user.
type ScoreAdjuster func(current, rating int, wouldMeetAgain bool) int

// DefaultScoreAdjuster nudges the score asymptotically: positive reviews
// move it a fifth of the way toward 100, negative ones a fifth of the way
// toward 0, so repeated reviews converge without a single one dominating.
// A 3-star review leaves the score alone.
func DefaultScoreAdjuster(current, rating int, wouldMeetAgain bool) int {
	next := current

	switch {
	case rating >= 4:
		next = current + (100-current)/5
		if wouldMeetAgain {
			next++
		}
	case rating <= 2:
		next = current - current/5
		if !wouldMeetAgain {
			next--
		}
	}

	if next > 100 {
		next = 100
	}
	if next < 0 {
		next = 0
	}
	return next
}
