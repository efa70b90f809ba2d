package content

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/solarfolio/solarfolio/assets"
)

func loadDefault(t *testing.T) *Manifest {
	t.Helper()
	data, err := assets.Files.ReadFile(assets.ManifestPath)
	if err != nil {
		t.Fatalf("read embedded manifest: %v", err)
	}
	m, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestDefaultManifest(t *testing.T) {
	m := loadDefault(t)
	if len(m.Bodies) != 4 {
		t.Fatalf("bodies = %d, want 4", len(m.Bodies))
	}
	for _, name := range []string{"planets", "about", "projects", "contact", "publications"} {
		if _, ok := m.Section(name); !ok {
			t.Fatalf("missing section %q", name)
		}
	}
	s, _ := m.Section("publications")
	if s.Target != 3 || s.Moons != "publications" {
		t.Fatalf("publications section = %+v", s)
	}
	if home, _ := m.Section("planets"); home.Target != Overview {
		t.Fatalf("planets target = %d, want overview", home.Target)
	}
	if got := m.Moons[1].Items[0].Links; len(got) != 3 || got[0].Text != "PDF" {
		t.Fatalf("publication links = %+v", got)
	}
}

func TestElementsTimeScale(t *testing.T) {
	m := loadDefault(t)
	earth := m.Bodies[2]
	el := m.TimeScale.Elements(earth, 90)
	if !scalar.EqualWithinAbs(el.OrbitalPeriod, m.TimeScale.EarthYearSeconds, 1e-9) {
		t.Fatalf("earth period = %v, want %v", el.OrbitalPeriod, m.TimeScale.EarthYearSeconds)
	}
	if !scalar.EqualWithinAbs(el.MeanAnomaly0, math.Pi/2, 1e-12) {
		t.Fatalf("M0 = %v", el.MeanAnomaly0)
	}
	venus := m.TimeScale.Elements(m.Bodies[1], 0)
	if venus.SpinRate() >= 0 {
		t.Fatalf("venus spin = %v, want retrograde", venus.SpinRate())
	}

	pinned := 10.0
	earth.MeanAnomaly0 = &pinned
	if el := m.TimeScale.Elements(earth, 90); !scalar.EqualWithinAbs(el.MeanAnomaly0, 10*math.Pi/180, 1e-12) {
		t.Fatalf("pinned M0 ignored: %v", el.MeanAnomaly0)
	}
}

func TestLoadRejects(t *testing.T) {
	const body = `{"name":"X","radius":1,"color":"#ffffff","semiMajorAxis":10,"eccentricity":%s}`
	cases := []struct {
		name, json, want string
	}{
		{"syntax", `{`, "parse manifest"},
		{"no bodies", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1}}`, "no bodies"},
		{"eccentricity", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1},"bodies":[` + strings.Replace(body, "%s", "1", 1) + `]}`, "eccentricity"},
		{"section range", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1},"bodies":[` + strings.Replace(body, "%s", "0", 1) + `],"sections":[{"name":"a","target":4}]}`, "out of range"},
		{"moon host", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1},"bodies":[` + strings.Replace(body, "%s", "0", 1) + `],"moons":[{"name":"m","host":2}]}`, "host 2"},
		{"unknown set", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1},"bodies":[` + strings.Replace(body, "%s", "0", 1) + `],"sections":[{"name":"a","target":0,"moons":"zz"}]}`, "unknown moon set"},
		{"set elsewhere", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1},"bodies":[` + strings.Replace(body, "%s", "0", 1) + `,` + strings.Replace(body, "%s", "0", 1) + `],"moons":[{"name":"m","host":1}],"sections":[{"name":"a","target":0,"moons":"m"}]}`, "not target 0"},
		{"color", `{"timeScale":{"earthYearSeconds":1,"earthDaySeconds":1},"bodies":[{"name":"X","radius":1,"color":"blue","semiMajorAxis":10}]}`, "parse color"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.json))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load error = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestMoonSetSprites(t *testing.T) {
	m := loadDefault(t)
	pubs := m.Moons[1]
	sp := pubs.Sprites()
	if len(sp) != 3 || sp[2].ID != 2 || !sp[0].HasHotspots() {
		t.Fatalf("sprites = %d, first has hotspots %v", len(sp), sp[0].HasHotspots())
	}
	if got := pubs.PixelsFor(640); got != 160 {
		t.Fatalf("PixelsFor(640) = %v, want 160", got)
	}
	if got := pubs.PixelsFor(4000); got != 256 {
		t.Fatalf("PixelsFor(4000) = %v, want 256", got)
	}
	if got := m.Moons[0].PixelsFor(640); got != 128 {
		t.Fatalf("projects PixelsFor = %v", got)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#6ea8ff")
	if err != nil || c.R != 0x6e || c.G != 0xa8 || c.B != 0xff || c.A != 255 {
		t.Fatalf("ParseColor = %v, %v", c, err)
	}
}

func TestAssetNames(t *testing.T) {
	m := loadDefault(t)
	names := m.AssetNames()
	// 3 surfaces, 1 normal map, 1 cloud texture, 7 moon faces
	if len(names) != 12 {
		t.Fatalf("assets = %d %v, want 12", len(names), names)
	}
	if names[0] != "textures/mercury.jpg" {
		t.Fatalf("first asset = %q, want the first surface", names[0])
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if n == "" || seen[n] {
			t.Fatalf("empty or duplicate asset %q", n)
		}
		seen[n] = true
	}
}
