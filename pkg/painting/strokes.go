package painting

import (
	"math"
	"math/rand/v2"
)

// buildPlan generates the ordered stroke plan for a width×height canvas:
// sky wash, landscape bands, the subject, then accent swirls. Later strokes
// overpaint earlier ones, so plan order is part of the picture.
func buildPlan(width, height int, rng *rand.Rand) []Stroke {
	var plan []Stroke
	w, h := float64(width), float64(height)

	// Sky wash, darkening toward the horizon.
	for y := 0; y < height; y++ {
		depth := float64(y) / h
		for x := 0; x < width; x++ {
			plan = append(plan, Stroke{X: x, Y: y, Color: [3]uint8{
				clampColor(120 + depth*60),
				clampColor(150 + depth*30),
				clampColor(190 - depth*50),
			}})
		}
	}

	// Layered landscape bands with a sinusoidal ridge line, far to near.
	for layer := 0; layer < 5; layer++ {
		base := h*0.35 + float64(layer)*h*0.12
		shade := float64(layer) * 18
		phase := rng.Float64() * 2 * math.Pi
		for x := 0; x < width; x++ {
			ridge := base + math.Sin(float64(x)*0.09+phase)*h*0.04
			for y := int(ridge); y < height; y++ {
				plan = append(plan, Stroke{X: x, Y: y, Color: [3]uint8{
					clampColor(70 + shade),
					clampColor(95 + shade),
					clampColor(60 + shade*0.5),
				}})
			}
		}
	}

	// The subject: an oval silhouette centered slightly above the middle.
	cx, cy := w/2, h*0.45
	rx, ry := w*0.16, h*0.22
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			d := dx*dx + dy*dy
			if d > 1 {
				continue
			}
			// Light falls from the upper left.
			light := (1 - d) * (0.6 - 0.4*dx + 0.2*dy)
			plan = append(plan, Stroke{X: x, Y: y, Color: [3]uint8{
				clampColor(185 + light*70),
				clampColor(160 + light*60),
				clampColor(135 + light*50),
			}})
		}
	}

	// Accent swirls around the subject.
	for i := 0; i < 400; i++ {
		t := float64(i) * 0.08
		r := w*0.22 + t*0.7
		x := int(cx + math.Cos(t+rng.Float64()*0.2)*r)
		y := int(cy + math.Sin(t)*r*0.6)
		plan = append(plan, Stroke{X: x, Y: y, Color: [3]uint8{
			clampColor(200 + rng.Float64()*40),
			clampColor(170 + rng.Float64()*30),
			clampColor(90 + rng.Float64()*30),
		}})
	}

	return plan
}

func clampColor(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
