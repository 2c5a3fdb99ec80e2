package pricing

import (
	"math"
	"testing"

	"github.com/wonny/quantedge/internal/contracts"
)

func TestNormCDF_Accuracy(t *testing.T) {
	for x := -8.0; x <= 8.0; x += 0.01 {
		want := 0.5 * math.Erfc(-x/math.Sqrt2)
		if got := normCDF(x); math.Abs(got-want) > 1e-7 {
			t.Fatalf("normCDF(%.2f) = %.10f, want %.10f", x, got, want)
		}
	}
}

func TestNormCDF_Symmetry(t *testing.T) {
	for _, x := range []float64{0, 0.1, 0.35, 1, 2.5, 6} {
		if sum := normCDF(x) + normCDF(-x); math.Abs(sum-1) > 1e-15 {
			t.Errorf("Φ(%v)+Φ(-%v) = %v, want 1", x, x, sum)
		}
	}
}

func TestNormCDF_SignedZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	if got := normCDF(negZero); got != 0.5 {
		t.Errorf("Φ(-0) = %v, want 0.5", got)
	}
	if got := normCDF(0); got != 0.5 {
		t.Errorf("Φ(0) = %v, want 0.5", got)
	}
}

func TestPrice_ReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		kind contracts.OptionKind
		want float64
	}{
		{"call", contracts.Call, 10.4506},
		{"put", contracts.Put, 5.5735},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(100, 100, 0.05, 1, 0.2, tt.kind)
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("Price() = %.6f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestPrice_PutCallParity(t *testing.T) {
	spots := []float64{50, 1300, 25000, 80000}
	moneyness := []float64{0.5, 0.9, 1, 1.1, 1.5}
	rates := []float64{0, 0.065, 0.1}
	expiries := []float64{1.0 / 365, 30.0 / 365, 1, 2}
	vols := []float64{0.05, 0.28, 1.0}

	for _, s := range spots {
		for _, m := range moneyness {
			k := s * m
			for _, r := range rates {
				for _, tt := range expiries {
					for _, v := range vols {
						call := Price(s, k, r, tt, v, contracts.Call)
						put := Price(s, k, r, tt, v, contracts.Put)
						want := s - k*math.Exp(-r*tt)
						if diff := math.Abs(call - put - want); diff > 1e-4 {
							t.Fatalf("parity S=%v K=%v r=%v T=%v σ=%v: diff %v", s, k, r, tt, v, diff)
						}
						if call < -1e-9 || put < -1e-9 {
							t.Fatalf("negative price S=%v K=%v: call=%v put=%v", s, k, call, put)
						}
					}
				}
			}
		}
	}
}

func TestPrice_RelianceScenario(t *testing.T) {
	tt := 30.0 / 365
	call := Price(1300, 1300, 0.065, tt, 0.28, contracts.Call)
	put := Price(1300, 1300, 0.065, tt, 0.28, contracts.Put)

	if math.IsNaN(call) || math.IsInf(call, 0) || math.IsNaN(put) || math.IsInf(put, 0) {
		t.Fatalf("non-finite prices: call=%v put=%v", call, put)
	}

	want := 1300 - 1300*math.Exp(-0.065*tt) // 6.9267
	if math.Abs(call-put-want) > 1e-4 {
		t.Errorf("call-put = %.6f, want %.6f", call-put, want)
	}
	if math.Abs(want-6.9267) > 1e-3 {
		t.Errorf("unexpected parity reference %.6f", want)
	}
}

func TestPrice_Degenerate(t *testing.T) {
	tests := []struct {
		name                  string
		spot, strike, tt, vol float64
	}{
		{"expired", 100, 100, 0, 0.2},
		{"negative time", 100, 100, -1, 0.2},
		{"zero vol", 100, 100, 1, 0},
		{"zero spot", 0, 100, 1, 0.2},
		{"zero strike", 100, 0, 1, 0.2},
		{"NaN vol", 100, 100, 1, math.NaN()},
		{"infinite spot", math.Inf(1), 100, 1, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range []contracts.OptionKind{contracts.Call, contracts.Put} {
				if got := Price(tt.spot, tt.strike, 0.065, tt.tt, tt.vol, kind); got != 0 {
					t.Errorf("Price(%s) = %v, want 0", kind, got)
				}
			}

			g := Greeks(tt.spot, tt.strike, 0.065, tt.tt, tt.vol)
			want := contracts.Greeks{DeltaCall: 0.5, DeltaPut: -0.5}
			if g != want {
				t.Errorf("Greeks() = %+v, want %+v", g, want)
			}
		})
	}
}

func TestGreeks_ReferenceValues(t *testing.T) {
	g := Greeks(100, 100, 0.05, 1, 0.2)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"delta call", g.DeltaCall, 0.63683},
		{"delta put", g.DeltaPut, -0.36317},
		{"gamma", g.Gamma, 0.018762},
		{"vega", g.Vega, 0.37524},
		{"theta", g.Theta, -0.017573},
	}

	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-4 {
			t.Errorf("%s = %.6f, want %.6f", c.name, c.got, c.want)
		}
	}
}

func TestGreeks_Bounds(t *testing.T) {
	for _, s := range []float64{10, 900, 1300, 1800, 50000} {
		for _, v := range []float64{0.1, 0.28, 0.7} {
			for _, days := range []int{1, 7, 30, 365} {
				g := Greeks(s, 1300, 0.065, YearFraction(days), v)

				if g.DeltaCall < 0 || g.DeltaCall > 1 {
					t.Fatalf("delta call out of range: %v", g.DeltaCall)
				}
				if g.DeltaPut < -1 || g.DeltaPut > 0 {
					t.Fatalf("delta put out of range: %v", g.DeltaPut)
				}
				if math.Abs(g.DeltaCall-g.DeltaPut-1) > 1e-9 {
					t.Fatalf("ΔC-ΔP = %v, want 1", g.DeltaCall-g.DeltaPut)
				}
				if g.Gamma < 0 || g.Vega < 0 {
					t.Fatalf("gamma/vega negative: %+v", g)
				}
			}
		}
	}
}

func TestPrice_Deterministic(t *testing.T) {
	a := Price(2450.5, 2500, 0.065, 14.0/365, 0.33, contracts.Call)
	b := Price(2450.5, 2500, 0.065, 14.0/365, 0.33, contracts.Call)
	if math.Float64bits(a) != math.Float64bits(b) {
		t.Errorf("repeated pricing differs: %v vs %v", a, b)
	}

	g1 := Greeks(2450.5, 2500, 0.065, 14.0/365, 0.33)
	g2 := Greeks(2450.5, 2500, 0.065, 14.0/365, 0.33)
	if g1 != g2 {
		t.Errorf("repeated greeks differ: %+v vs %+v", g1, g2)
	}
}

func TestQuote(t *testing.T) {
	q := Quote(1300, 1300, 0.065, 30, 0.28)

	if q.ExpiryDays != 30 || q.Strike != 1300 || q.Spot != 1300 {
		t.Errorf("unexpected echo fields: %+v", q)
	}
	if q.ImpliedVolPct != 28 {
		t.Errorf("ImpliedVolPct = %v, want 28", q.ImpliedVolPct)
	}
	if q.CallPrice <= q.PutPrice {
		t.Errorf("ATM call should exceed put with positive rate: call=%v put=%v", q.CallPrice, q.PutPrice)
	}

	expired := Quote(1300, 1300, 0.065, 0, 0.28)
	if expired.CallPrice != 0 || expired.Greeks.DeltaCall != 0.5 {
		t.Errorf("expired quote not degenerate: %+v", expired)
	}
}
