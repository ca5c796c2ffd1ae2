package numtheory

import (
	"errors"
	"math/big"
	"math/rand"
	"testing"
)

func TestGCD(t *testing.T) {
	testCases := []struct {
		a, b, want int64
	}{
		{0, 0, 0},
		{0, 7, 7},
		{7, 0, 7},
		{12, 18, 6},
		{-12, 18, 6},
		{12, -18, 6},
		{-12, -18, 6},
		{17, 3120, 1},
		{3233, 61, 61},
	}

	for _, tc := range testCases {
		got := GCD(big.NewInt(tc.a), big.NewInt(tc.b))
		if got.Int64() != tc.want {
			t.Errorf("GCD(%d, %d) = %s, expected %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestExtendedGCDSatisfiesBezoutIdentity(t *testing.T) {
	pairs := [][2]int64{
		{0, 0}, {0, 5}, {5, 0}, {240, 46}, {46, 240},
		{-240, 46}, {240, -46}, {-240, -46}, {17, 3120}, {1, 1}, {-1, 0},
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		pairs = append(pairs, [2]int64{rng.Int63n(1<<40) - 1<<39, rng.Int63n(1<<40) - 1<<39})
	}

	for _, p := range pairs {
		a, b := big.NewInt(p[0]), big.NewInt(p[1])
		g, x, y := ExtendedGCD(a, b)

		if g.Sign() < 0 {
			t.Fatalf("ExtendedGCD(%d, %d) returned negative gcd %s", p[0], p[1], g)
		}
		if want := GCD(a, b); g.Cmp(want) != 0 {
			t.Fatalf("ExtendedGCD(%d, %d) gcd = %s, expected %s", p[0], p[1], g, want)
		}

		lhs := new(big.Int).Mul(a, x)
		lhs.Add(lhs, new(big.Int).Mul(b, y))
		if lhs.Cmp(g) != 0 {
			t.Fatalf("ExtendedGCD(%d, %d): %d*%s + %d*%s = %s, expected %s", p[0], p[1], p[0], x, p[1], y, lhs, g)
		}
	}
}

func TestExtendedGCDDoesNotMutateInputs(t *testing.T) {
	a, b := big.NewInt(240), big.NewInt(46)
	ExtendedGCD(a, b)
	if a.Int64() != 240 || b.Int64() != 46 {
		t.Fatalf("ExtendedGCD mutated its inputs: a=%s b=%s", a, b)
	}
}

func TestModInverse(t *testing.T) {
	d, err := ModInverse(big.NewInt(17), big.NewInt(3120))
	if err != nil {
		t.Fatalf("ModInverse(17, 3120) failed with error %v", err)
	}
	if d.Int64() != 2753 {
		t.Errorf("ModInverse(17, 3120) = %s, expected 2753", d)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		m := big.NewInt(rng.Int63n(1<<30) + 2)
		a := big.NewInt(rng.Int63n(1<<31) - 1<<30)
		inv, err := ModInverse(a, m)
		if GCD(a, m).Cmp(one) != 0 {
			if !errors.Is(err, ErrNoInverse) {
				t.Fatalf("ModInverse(%s, %s) error = %v, expected ErrNoInverse", a, m, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ModInverse(%s, %s) failed with error %v", a, m, err)
		}
		if inv.Sign() < 0 || inv.Cmp(m) >= 0 {
			t.Fatalf("ModInverse(%s, %s) = %s, not in [0, m)", a, m, inv)
		}
		check := new(big.Int).Mul(inv, a)
		check.Mod(check, m)
		if check.Cmp(one) != 0 {
			t.Fatalf("ModInverse(%s, %s) = %s, but product is %s mod m", a, m, inv, check)
		}
	}
}

func TestModInverseErrors(t *testing.T) {
	if _, err := ModInverse(big.NewInt(4), big.NewInt(8)); !errors.Is(err, ErrNoInverse) {
		t.Errorf("ModInverse(4, 8) error = %v, expected ErrNoInverse", err)
	}
	if _, err := ModInverse(big.NewInt(3), big.NewInt(0)); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("ModInverse(3, 0) error = %v, expected ErrInvalidModulus", err)
	}
	if _, err := ModInverse(big.NewInt(3), big.NewInt(-7)); !errors.Is(err, ErrInvalidModulus) {
		t.Errorf("ModInverse(3, -7) error = %v, expected ErrInvalidModulus", err)
	}
}

func TestModPow(t *testing.T) {
	testCases := []struct {
		name           string
		base, exp, mod int64
		want           int64
	}{
		{"textbook encrypt", 65, 17, 3233, 2790},
		{"textbook decrypt", 2790, 2753, 3233, 65},
		{"zero exponent", 12345, 0, 97, 1},
		{"modulus one", 12345, 99, 1, 0},
		{"zero exponent modulus one", 5, 0, 1, 0},
		{"negative base", -2, 3, 7, 6},
		{"zero base", 0, 5, 13, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ModPow(big.NewInt(tc.base), big.NewInt(tc.exp), big.NewInt(tc.mod))
			if got.Int64() != tc.want {
				t.Errorf("ModPow(%d, %d, %d) = %s, expected %d", tc.base, tc.exp, tc.mod, got, tc.want)
			}
		})
	}
}

func TestModPowMatchesExp(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		base := new(big.Int).Rand(rng, new(big.Int).Lsh(one, 200))
		exp := new(big.Int).Rand(rng, new(big.Int).Lsh(one, 64))
		mod := new(big.Int).Rand(rng, new(big.Int).Lsh(one, 128))
		mod.Add(mod, big.NewInt(2))

		want := new(big.Int).Exp(base, exp, mod)
		if got := ModPow(base, exp, mod); got.Cmp(want) != 0 {
			t.Fatalf("ModPow(%s, %s, %s) = %s, expected %s", base, exp, mod, got, want)
		}
	}
}

func TestIsPerfectSquare(t *testing.T) {
	if root, ok := IsPerfectSquare(big.NewInt(99400900)); !ok || root.Int64() != 9970 {
		t.Errorf("IsPerfectSquare(99400900) = (%v, %v), expected (9970, true)", root, ok)
	}
	if _, ok := IsPerfectSquare(big.NewInt(99400891)); ok {
		t.Error("IsPerfectSquare(99400891) = true, expected false")
	}
	if _, ok := IsPerfectSquare(big.NewInt(-4)); ok {
		t.Error("IsPerfectSquare(-4) = true, expected false")
	}
	if got := CeilSqrt(big.NewInt(99400891)); got.Int64() != 9970 {
		t.Errorf("CeilSqrt(99400891) = %s, expected 9970", got)
	}
	if got := CeilSqrt(big.NewInt(49)); got.Int64() != 7 {
		t.Errorf("CeilSqrt(49) = %s, expected 7", got)
	}
}
