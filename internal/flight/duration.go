package flight

import (
	"strings"
	"sync"
)

// Duration tokens repeat heavily across a result set, so parses are memoized
// process-wide. Once the memo grows past the limit the whole map is dropped;
// tracking recency is not worth it for a bounded vocabulary of tokens.
const durationMemoLimit = 1000

var durationMemo = struct {
	sync.Mutex
	entries map[string]int
}{entries: make(map[string]int)}

// ParseDuration converts a duration token of the form [nH][nM], optionally
// prefixed PT ("PT2H30M", "2h30m", "45M"), into total minutes. It never
// fails: malformed or empty input yields 0.
func ParseDuration(token string) int {
	if token == "" {
		return 0
	}

	durationMemo.Lock()
	if cached, ok := durationMemo.entries[token]; ok {
		durationMemo.Unlock()
		return cached
	}
	durationMemo.Unlock()

	input := strings.TrimPrefix(strings.ToUpper(token), "PT")

	total := 0
	current := 0
	for i := 0; i < len(input); i++ {
		switch c := input[i]; {
		case c >= '0' && c <= '9':
			current = current*10 + int(c-'0')
		case c == 'H':
			total += current * 60
			current = 0
		case c == 'M':
			total += current
			current = 0
		}
	}

	durationMemo.Lock()
	if len(durationMemo.entries) > durationMemoLimit {
		durationMemo.entries = make(map[string]int)
	}
	durationMemo.entries[token] = total
	durationMemo.Unlock()

	return total
}
