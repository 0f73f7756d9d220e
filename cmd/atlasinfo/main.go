package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pspoerri/atlas-composer/internal/config"
	"github.com/pspoerri/atlas-composer/internal/param"
	"github.com/pspoerri/atlas-composer/internal/preset"
	"github.com/pspoerri/atlas-composer/internal/projection"
)

func main() {
	point := flag.String("point", "", "lon,lat to project through the composition")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: atlasinfo [-point lon,lat] <config.json | builtin preset name>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	name := flag.Arg(0)

	data, ok := preset.Builtin(name)
	if !ok {
		var err error
		data, err = os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	codec := config.NewCodec(param.NewDefaultRegistry(), projection.NewDefaultRegistry())
	res := codec.Decode(data)

	if res.Document != nil {
		fmt.Printf("Atlas: %s (%s)\n", res.Document.Metadata.AtlasID, res.Document.Metadata.AtlasName)
		fmt.Printf("Version: %s\n", res.Document.Version)
	}
	if res.ReferenceScale > 0 {
		fmt.Printf("Reference scale: %g\n", res.ReferenceScale)
	}
	if res.Canvas != nil {
		fmt.Printf("Canvas: %g x %g\n", res.Canvas.Width, res.Canvas.Height)
	}

	fmt.Printf("Territories: %d\n", len(res.Territories))
	for _, t := range res.Territories {
		fmt.Printf("  %-8s %s (%s, %s)", t.Code, t.Name, t.ProjectionID, t.Family)
		if t.Bounds != nil {
			b := *t.Bounds
			fmt.Printf("  lon=[%g, %g] lat=[%g, %g]", b[0][0], b[1][0], b[0][1], b[1][1])
		}
		fmt.Println()
	}

	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e)
	}
	if !res.OK {
		os.Exit(1)
	}

	if *point != "" {
		lon, lat, err := parsePoint(*point)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		comp, err := codec.BuildComposite(res, preset.DefaultCanvasWidth, preset.DefaultCanvasHeight)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		x, y, ok := comp.Forward(lon, lat)
		if !ok {
			fmt.Printf("Point (%g, %g): outside every territory\n", lon, lat)
			return
		}
		fmt.Printf("Point (%g, %g) -> (%f, %f)\n", lon, lat, x, y)
		for _, t := range comp.Territories() {
			if p, ok := comp.Projection(t.Code); ok {
				if px, py, ok := p.Forward(lon, lat); ok && px == x && py == y {
					fmt.Printf("Routed through: %s\n", t.Code)
					break
				}
			}
		}
	}
}

func parsePoint(s string) (lon, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("point must be lon,lat")
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", parts[0])
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", parts[1])
	}
	return lon, lat, nil
}
