package monitor

import "testing"

func TestRetainResolveRelease(t *testing.T) {
	m := &Monitor{}
	token := bridge.retain(m)

	got, ok := bridge.resolve(token)
	if !ok {
		t.Fatal("retained token should resolve")
	}
	if got != m {
		t.Error("resolved a different monitor")
	}

	bridge.release(token)
	if _, ok := bridge.resolve(token); ok {
		t.Error("released token should not resolve")
	}

	// Releasing twice is a no-op.
	bridge.release(token)
}

func TestTokensUnique(t *testing.T) {
	a := &Monitor{}
	b := &Monitor{}
	ta := bridge.retain(a)
	tb := bridge.retain(b)
	defer bridge.release(ta)
	defer bridge.release(tb)

	if ta == tb {
		t.Fatal("two retains returned the same token")
	}

	bridge.release(ta)
	if _, ok := bridge.resolve(tb); !ok {
		t.Error("releasing one token should not affect another")
	}
}

func TestResolveUnknownToken(t *testing.T) {
	if _, ok := bridge.resolve(0); ok {
		t.Error("token 0 should never resolve")
	}
	if _, ok := bridge.resolve(1 << 40); ok {
		t.Error("unknown token should not resolve")
	}
}
