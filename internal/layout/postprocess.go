package layout

import "sort"

// detection is one raw model output box in model-input coordinates.
type detection struct {
	box   Rect
	score float32
	class int
}

// decodeDetections parses the raw model output into candidate detections.
// The exported DocLayout-YOLO model emits shape [1, N, 6] rows of
// (x0, y0, x1, y1, score, class) after its built-in NMS-free head; rows
// below the confidence threshold are discarded.
func decodeDetections(data []float32, shape []int64, confThreshold float32) []detection {
	if len(shape) != 3 || shape[2] < 6 {
		return nil
	}
	rows := int(shape[1])
	stride := int(shape[2])

	dets := make([]detection, 0, 64)
	for i := 0; i < rows; i++ {
		row := data[i*stride:]
		score := row[4]
		if score < confThreshold {
			continue
		}
		x0, y0, x1, y1 := float64(row[0]), float64(row[1]), float64(row[2]), float64(row[3])
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		dets = append(dets, detection{
			box:   Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0},
			score: score,
			class: int(row[5]),
		})
	}
	return dets
}

// nonMaxSuppression keeps the highest-scoring detection among overlapping
// same-class candidates. Ties are broken by box position so the result is
// deterministic for identical input.
func nonMaxSuppression(dets []detection, iouThreshold float32) []detection {
	sort.SliceStable(dets, func(i, j int) bool {
		if dets[i].score != dets[j].score {
			return dets[i].score > dets[j].score
		}
		if dets[i].box.Y != dets[j].box.Y {
			return dets[i].box.Y < dets[j].box.Y
		}
		return dets[i].box.X < dets[j].box.X
	})

	kept := make([]detection, 0, len(dets))
	for _, cand := range dets {
		suppressed := false
		for _, k := range kept {
			if k.class == cand.class && iou(k.box, cand.box) > float64(iouThreshold) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, cand)
		}
	}
	return kept
}

// iou computes intersection-over-union of two rectangles.
func iou(a, b Rect) float64 {
	ix0 := max(a.X, b.X)
	iy0 := max(a.Y, b.Y)
	ix1 := min(a.X+a.Width, b.X+b.Width)
	iy1 := min(a.Y+a.Height, b.Y+b.Height)

	if ix1 <= ix0 || iy1 <= iy0 {
		return 0
	}
	inter := (ix1 - ix0) * (iy1 - iy0)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
