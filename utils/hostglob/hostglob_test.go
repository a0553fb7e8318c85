package hostglob

import (
	"slices"
	"testing"
)

func TestSplitMultiPattern(t *testing.T) {
	xs, err := SplitMultiPattern("yes.no,ml[1-3].hi,ml[1,2],zappa")
	if err != nil {
		t.Fatalf("Hostnames #1: %s", err.Error())
	}
	if len(xs) != 4 || xs[0] != "yes.no" || xs[1] != "ml[1-3].hi" || xs[2] != "ml[1,2]" || xs[3] != "zappa" {
		t.Fatalf("Hostnames #2: %v", xs)
	}
	// Empty input is allowed
	xs, err = SplitMultiPattern("")
	if err != nil {
		t.Fatalf("Hostnames #3: %s", err.Error())
	}
	if len(xs) != 0 {
		t.Fatalf("Hostnames #4: %v", xs)
	}
	for i, bad := range []string{"yes[hi", "yes[hi[]", "yes]", ",yes", "yes,", "yes,,no"} {
		xs, err = SplitMultiPattern(bad)
		if err == nil {
			t.Fatalf("Should fail #%d: %v", i+1, xs)
		}
	}
}

func TestExpandPattern(t *testing.T) {
	x, err := ExpandPattern("ab[1-2,4].cd[3]")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(x, []string{"ab1.cd3", "ab2.cd3", "ab4.cd3"}) {
		t.Fatalf("Pattern: %v", x)
	}
	x, err = ExpandPattern("ab[1-2]cd")
	if err != nil || !slices.Equal(x, []string{"ab1cd", "ab2cd"}) {
		t.Fatalf("Embedded range: %v %v", x, err)
	}
	if _, err = ExpandPattern("ab[].cd"); err == nil {
		t.Fatal("Expected failure on empty range")
	}
	if _, err = ExpandPattern("ab*.cd"); err == nil {
		t.Fatal("Expected failure on wildcard")
	}
	if _, err = ExpandPattern("ab[3-1]"); err == nil {
		t.Fatal("Expected failure on reversed range")
	}
}

func TestExpandPadded(t *testing.T) {
	x, err := ExpandPattern("r201n[08-10]")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(x, []string{"r201n08", "r201n09", "r201n10"}) {
		t.Fatalf("Padded: %v", x)
	}
	x, err = ExpandMultiPattern("r201n[01-02], r202n05,r201n01")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(x, []string{"r201n01", "r201n02", "r202n05"}) {
		t.Fatalf("Multi: %v", x)
	}
}

func TestCompressHostnames(t *testing.T) {
	testCompress(
		t,
		[]string{
			"c6-1",
			"c6-2",
			"c6-3",
			"c66-4",
			"cesium", // No number
			"c6-1234567890123456789012345678901234567890", // Numbers out of range
		},
		[]string{
			"c6-1234567890123456789012345678901234567890",
			"c6-[1-3]",
			"c66-4",
			"cesium",
		})
	testCompress(
		t,
		[]string{"c6-1.e1", "c6-2.e1", "c6-1.e2", "c6-2.e2"},
		[]string{"c6-[1-2].e1", "c6-[1-2].e2"})
	testCompress(
		t,
		[]string{"r201n01", "r201n02", "r201n03", "r201n07"},
		[]string{"r201n[01-03,07]"})
}

func testCompress(t *testing.T, hosts []string, expect []string) {
	cs := CompressHostnames(hosts)
	if !slices.Equal(cs, expect) {
		t.Fatalf("Compressed %v, expected %v", cs, expect)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	hosts := []string{"r1n08", "r1n09", "r1n10", "r1n11", "gpu-3", "gpu-1"}
	var back []string
	for _, p := range CompressHostnames(hosts) {
		xs, err := ExpandPattern(p)
		if err != nil {
			t.Fatal(err)
		}
		back = append(back, xs...)
	}
	slices.Sort(back)
	want := slices.Clone(hosts)
	slices.Sort(want)
	if !slices.Equal(back, want) {
		t.Fatalf("Round trip: %v vs %v", back, want)
	}
}

func TestExpandMalformed(t *testing.T) {
	for _, bad := range []string{"a..b", ".a", "a.", "c1-[1,]", "c1-[[1]]", "c1-[x]", "c1-]"} {
		if xs, err := ExpandPattern(bad); err == nil {
			t.Fatalf("Should fail: %s -> %v", bad, xs)
		}
	}
	if _, err := ExpandMultiPattern("c1-[1-2],c2-[4"); err == nil {
		t.Fatal("Should fail on missing end bracket")
	}
	x, err := ExpandMultiPattern("c1-[1-2].fox,bigmem-1")
	if err != nil || !slices.Equal(x, []string{"c1-1.fox", "c1-2.fox", "bigmem-1"}) {
		t.Fatalf("Multi: %v %v", x, err)
	}
}
