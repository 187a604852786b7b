package dart

import (
	"dartboard/errors"
	"fmt"
)

// scoreTable maps a dart dice face to the points it is worth.
// Telegram reports 6 for a bullseye and 1 for a miss.
var scoreTable = map[int]int{
	1: 0,
	2: 1,
	3: 2,
	4: 3,
	5: 4,
	6: 6,
}

// ScoreDelta returns the points awarded for a raw dice value.
// Values outside 1..6 are rejected with ErrInvalidEventValue.
func ScoreDelta(value int) (int, error) {
	delta, ok := scoreTable[value]
	if !ok {
		return 0, fmt.Errorf("%w: %d", errors.ErrInvalidEventValue, value)
	}
	return delta, nil
}
