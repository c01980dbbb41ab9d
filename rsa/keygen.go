package rsa

import (
	"math/big"
	"time"

	"rsars/logging"
	"rsars/rsa/keys"
	"rsars/rsa/primegen"
)

var one = big.NewInt(1)

// Euler returns the totient of p*q for distinct primes p and q.
func Euler(p, q *big.Int) *big.Int {
	pm := new(big.Int).Sub(p, one)
	qm := new(big.Int).Sub(q, one)
	return pm.Mul(pm, qm)
}

// extendedEuclid solves a*x + b*y = gcd(a, b) recursively. Depth is
// O(log min(a, b)).
func extendedEuclid(a, b *big.Int) (d, x, y *big.Int) {
	if b.Sign() == 0 {
		return new(big.Int).Set(a), big.NewInt(1), new(big.Int)
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	d, x2, y2 := extendedEuclid(b, r)
	return d, y2, x2.Sub(x2, q.Mul(q, y2))
}

// ModInverse returns a^-1 mod b, normalized into [0, b), or zero when a
// and b are not coprime.
func ModInverse(a, b *big.Int) *big.Int {
	d, x, _ := extendedEuclid(a, b)
	if d.Cmp(one) != 0 {
		return new(big.Int)
	}
	x.Mod(x, b)
	x.Add(x, b)
	return x.Mod(x, b)
}

// CheckKeySet verifies the defining invariant of an exponent pair,
// (d*e) mod phi == 1. A violation means the arithmetic layer is broken,
// so it panics rather than returning an error.
func CheckKeySet(d, e, phi *big.Int) {
	res := new(big.Int).Mul(d, e)
	res.Mod(res, phi)
	logging.Infof("(d * e) %% phi = %s", res)
	if res.Cmp(one) != 0 {
		panic("rsa: (d * e) mod phi != 1, modular inverse is broken")
	}
}

func (o *Options) generator() *primegen.Generator {
	return &primegen.Generator{
		Rounds:  o.Rounds,
		TimeMax: time.Duration(o.TimeMax) * time.Millisecond,
		Threads: o.Threads,
		Retry:   o.Retry,
	}
}

// GenerateKey derives a fresh key set: two primes p, q drawn from
// [2^PrimeMin, 2^PrimeMax), n = p*q, a prime public exponent e coprime
// to phi, and d as its modular inverse.
func (o *Options) GenerateKey() (keys.KeySet, error) {
	gen := o.generator()
	low := new(big.Int).Lsh(one, o.PrimeMin)
	high := new(big.Int).Lsh(one, o.PrimeMax)

	p, err := gen.Generate(low, high)
	if err != nil {
		return keys.KeySet{}, err
	}
	q, err := gen.Generate(low, high)
	if err != nil {
		return keys.KeySet{}, err
	}

	n := new(big.Int).Mul(p, q)
	phi := Euler(p, q)

	var e *big.Int
	for {
		e, err = gen.Generate(one, phi)
		if err != nil {
			return keys.KeySet{}, err
		}
		if new(big.Int).GCD(nil, nil, phi, e).Cmp(one) == 0 {
			break
		}
	}

	d := ModInverse(e, phi)
	CheckKeySet(d, e, phi)

	return keys.KeySet{
		Public:  keys.Key{Base: e, M: n},
		Private: keys.Key{Base: d, M: n},
	}, nil
}
