// Package primegen provides a probabilistic primality oracle and a
// parallel, time-budgeted prime searcher over [math/big] integers.
//
// The searcher races several workers over the same bit-range and keeps
// surplus primes in a process-wide cache, so that a later request can be
// answered without spawning a new search.
package primegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"rsars/logging"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// TimeoutError is returned when no worker finds a prime within the
// configured budget and retrying is disabled.
type TimeoutError struct {
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timeout after %d ms", e.Elapsed.Milliseconds())
}

// randBelow draws a uniform integer from [0, max). The underlying entropy
// source failing is unrecoverable for this tool, so it panics instead of
// returning an error.
func randBelow(max *big.Int) *big.Int {
	r, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic("primegen: entropy source failed: " + err.Error())
	}
	return r
}

// PowMod computes a^q mod n by square-and-multiply over the bits of q,
// least significant first. n must be positive, q non-negative.
// PowMod(a, 0, n) is 1.
func PowMod(a, q, n *big.Int) *big.Int {
	r := big.NewInt(1)
	base := new(big.Int).Set(a)
	exp := new(big.Int).Set(q)
	for exp.Sign() != 0 {
		if exp.Bit(0) == 1 {
			r.Mul(r, base)
			r.Mod(r, n)
		}
		exp.Rsh(exp, 1)
		base.Mul(base, base)
		base.Mod(base, n)
	}
	return r
}

// MillerRabin reports whether n is probably prime after the given number
// of witness rounds.
//
// Edge behavior: zero is reported as prime (callers never ask, the
// searcher's lower bound is at least 2), even numbers and one are
// composite. Note that this also classifies 2 as composite.
func MillerRabin(n *big.Int, rounds int) bool {
	if n.Sign() == 0 {
		return true
	}
	if n.Bit(0) == 0 || n.Cmp(one) == 0 {
		return false
	}

	// Strip the trailing one-bits of n-1 to get the odd part. The
	// squaring loop below doubles d until it reaches n, which iterates
	// often enough for the test to stay correct.
	d := new(big.Int).Sub(n, one)
	for d.Bit(0) == 1 {
		d.Rsh(d, 1)
	}
	odd := new(big.Int).Set(d)

	nMinusOne := new(big.Int).Sub(n, one)
	witnessSpan := new(big.Int).Sub(n, two)

	for i := 0; i < rounds; i++ {
		a := randBelow(witnessSpan)
		a.Add(a, two)
		d.Set(odd)
		x := PowMod(a, d, n)
		if x.Cmp(one) == 0 {
			continue
		}
		pass := false
		for d.Cmp(n) < 0 {
			if x.Cmp(nMinusOne) == 0 {
				pass = true
				break
			}
			x.Mul(x, x)
			x.Mod(x, n)
			d.Lsh(d, 1)
		}
		if !pass {
			return false
		}
	}
	return true
}

// Cache is a stack of surplus primes shared between searches. Pops are
// destructive; the cache only shrinks by consumption.
type Cache struct {
	mu     sync.Mutex
	primes []*big.Int
}

func NewCache() *Cache {
	return &Cache{}
}

// DefaultCache is the process-wide prime cache used by generators that do
// not carry their own.
var DefaultCache = NewCache()

func (c *Cache) Push(p *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primes = append(c.primes, p)
}

// Pop removes and returns the most recently pushed prime, or nil when the
// cache is empty.
func (c *Cache) Pop() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.primes) == 0 {
		return nil
	}
	p := c.primes[len(c.primes)-1]
	c.primes = c.primes[:len(c.primes)-1]
	return p
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.primes)
}

// Generator searches for probable primes within a bit-range.
type Generator struct {
	// Rounds is the Miller-Rabin witness count applied to every candidate.
	Rounds int
	// TimeMax is the wall-clock budget of a single worker.
	TimeMax time.Duration
	// Threads is the number of workers racing per search.
	Threads int
	// Retry restarts the search instead of failing on timeout.
	Retry bool
	// Cache overrides DefaultCache when set.
	Cache *Cache
}

// candidates tested between two clock reads
const searchEpoch = 16

func (g *Generator) cache() *Cache {
	if g.Cache != nil {
		return g.Cache
	}
	return DefaultCache
}

func (g *Generator) threads() int {
	if g.Threads < 1 {
		return 1
	}
	return g.Threads
}

// Generate returns a probable prime from [low, high). A cached surplus
// prime is consumed first; otherwise Threads workers race within the
// TimeMax budget, and any extra primes they find are cached for later
// calls. When every worker times out, Generate either recurses (Retry)
// or fails with a *TimeoutError.
func (g *Generator) Generate(low, high *big.Int) (*big.Int, error) {
	cache := g.cache()
	if p := cache.Pop(); p != nil {
		logging.Infof("using cached prime: %s", p)
		return p, nil
	}

	t := g.threads()
	found := make(chan *big.Int, t)
	var wg sync.WaitGroup
	for i := 0; i < t; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := g.generateOne(low, high)
			if err != nil {
				found <- nil
				return
			}
			found <- p
		}()
	}
	wg.Wait()
	close(found)

	for p := range found {
		if p != nil {
			cache.Push(p)
		}
	}

	if p := cache.Pop(); p != nil {
		return p, nil
	}
	if g.Retry {
		return g.Generate(low, high)
	}
	return nil, &TimeoutError{Elapsed: g.TimeMax}
}

// generateOne is a single worker: draw candidates uniformly from
// [low, high) in batches of searchEpoch, reading the clock only between
// batches.
func (g *Generator) generateOne(low, high *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(high, low)
	start := time.Now()
	tries := 0
	for {
		for i := 0; i < searchEpoch; i++ {
			tries++
			candidate := randBelow(span)
			candidate.Add(candidate, low)
			if MillerRabin(candidate, g.Rounds) {
				logging.Infof("found prime in %d tries after %d ms",
					tries, time.Since(start).Milliseconds())
				return candidate, nil
			}
		}
		if elapsed := time.Since(start); elapsed > g.TimeMax {
			logging.Infof("failed generation in %d tries after %d ms",
				tries, elapsed.Milliseconds())
			return nil, &TimeoutError{Elapsed: elapsed}
		}
	}
}
