package geometry

import (
	"sort"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// nBuckets and maxLeafSize fix the SAH construction parameters: 12
// centroid buckets per split candidate, leaves capped at 4 primitives.
const (
	nBuckets    = 12
	maxLeafSize = 4
)

// bvhPrimitive pairs a shape with its precomputed world bounds and
// centroid, avoiding repeated WorldBounds() calls during construction.
type bvhPrimitive struct {
	shape    Shape
	bounds   Bounds3
	centroid rtmath.Vec3
}

// bvhNode is either an interior node (Left/Right set, Axis meaningful) or
// a leaf (Start/Count index a contiguous run of BVH.ordered).
type bvhNode struct {
	Bounds      Bounds3
	Left, Right *bvhNode
	Axis        int
	Start       int
	Count       int
}

func (n *bvhNode) isLeaf() bool { return n.Left == nil && n.Right == nil }

// BVH accelerates ray-scene intersection with a top-down SAH-split binary
// tree, replacing a linear scan of every shape. Construction buckets
// centroids by the surface-area heuristic; traversal descends the near
// child first with a bounds pre-test.
type BVH struct {
	root    *bvhNode
	ordered []Shape
}

// NewBVH builds a BVH over the given shapes. An empty input yields a BVH
// whose Intersect/Occluded calls always miss.
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}
	prims := make([]bvhPrimitive, len(shapes))
	for i, s := range shapes {
		b := s.WorldBounds()
		prims[i] = bvhPrimitive{shape: s, bounds: b, centroid: b.Centroid()}
	}
	ordered := make([]Shape, 0, len(shapes))
	root := buildBVHNode(prims, &ordered)
	return &BVH{root: root, ordered: ordered}
}

func buildBVHNode(prims []bvhPrimitive, ordered *[]Shape) *bvhNode {
	bounds := prims[0].bounds
	for _, p := range prims[1:] {
		bounds = bounds.Merge(p.bounds)
	}

	if len(prims) <= maxLeafSize {
		return makeLeaf(prims, bounds, ordered)
	}

	centroidBounds := NewBounds3FromPoints(prims[0].centroid)
	for _, p := range prims[1:] {
		centroidBounds = centroidBounds.Merge(NewBounds3FromPoints(p.centroid))
	}
	axis := centroidBounds.LongestAxis()

	if centroidBounds.Diagonal().Axis(axis) < 1e-12 {
		return makeLeaf(prims, bounds, ordered)
	}

	splitIdx, ok := sahSplit(prims, centroidBounds, axis)
	if !ok {
		return makeLeaf(prims, bounds, ordered)
	}

	sort.Slice(prims, func(i, j int) bool {
		return prims[i].centroid.Axis(axis) < prims[j].centroid.Axis(axis)
	})

	left := buildBVHNode(prims[:splitIdx], ordered)
	right := buildBVHNode(prims[splitIdx:], ordered)
	return &bvhNode{Bounds: bounds, Left: left, Right: right, Axis: axis}
}

func makeLeaf(prims []bvhPrimitive, bounds Bounds3, ordered *[]Shape) *bvhNode {
	start := len(*ordered)
	for _, p := range prims {
		*ordered = append(*ordered, p.shape)
	}
	return &bvhNode{Bounds: bounds, Start: start, Count: len(prims)}
}

// sahSplit buckets primitives by centroid along axis into nBuckets equal
// intervals, evaluates the bucketed SAH cost for each of the nBuckets-1
// split planes, and returns the partition index for the cheapest one. It
// falls back to reporting no split when every primitive's centroid lands
// in a single bucket (a degenerate, already axis-collapsed distribution).
func sahSplit(prims []bvhPrimitive, centroidBounds Bounds3, axis int) (int, bool) {
	type bucket struct {
		count  int
		bounds Bounds3
	}
	buckets := make([]bucket, nBuckets)

	lo := centroidBounds.Min.Axis(axis)
	extent := centroidBounds.Max.Axis(axis) - lo

	bucketOf := func(p bvhPrimitive) int {
		b := int(float64(nBuckets) * (p.centroid.Axis(axis) - lo) / extent)
		if b >= nBuckets {
			b = nBuckets - 1
		}
		if b < 0 {
			b = 0
		}
		return b
	}

	for _, p := range prims {
		b := bucketOf(p)
		buckets[b].count++
		if buckets[b].bounds.Invalid() && buckets[b].count == 1 {
			buckets[b].bounds = p.bounds
		} else {
			buckets[b].bounds = buckets[b].bounds.Merge(p.bounds)
		}
	}

	// Prefix bounds/counts from the left, suffix from the right, so each
	// split plane's two-sided cost is O(1) to evaluate.
	leftBounds := make([]Bounds3, nBuckets)
	leftCount := make([]int, nBuckets)
	acc := Bounds3{}
	accCount := 0
	for i := 0; i < nBuckets; i++ {
		if buckets[i].count > 0 {
			if accCount == 0 {
				acc = buckets[i].bounds
			} else {
				acc = acc.Merge(buckets[i].bounds)
			}
			accCount += buckets[i].count
		}
		leftBounds[i] = acc
		leftCount[i] = accCount
	}

	rightBounds := make([]Bounds3, nBuckets)
	rightCount := make([]int, nBuckets)
	acc = Bounds3{}
	accCount = 0
	for i := nBuckets - 1; i >= 0; i-- {
		if buckets[i].count > 0 {
			if accCount == 0 {
				acc = buckets[i].bounds
			} else {
				acc = acc.Merge(buckets[i].bounds)
			}
			accCount += buckets[i].count
		}
		rightBounds[i] = acc
		rightCount[i] = accCount
	}

	totalBounds := leftBounds[nBuckets-1]
	totalArea := totalBounds.SurfaceArea()
	if totalArea <= 0 {
		return 0, false
	}

	bestCost := -1.0
	bestSplit := -1
	for i := 0; i < nBuckets-1; i++ {
		nLeft, nRight := leftCount[i], rightCount[i+1]
		if nLeft == 0 || nRight == 0 {
			continue
		}
		cost := (float64(nLeft)*leftBounds[i].SurfaceArea() + float64(nRight)*rightBounds[i+1].SurfaceArea()) / totalArea
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			bestSplit = i
		}
	}
	if bestSplit < 0 {
		return 0, false
	}

	// Partition prims by bucket index relative to the chosen split plane
	// and report the count that belongs on the left.
	leftN := 0
	for _, p := range prims {
		if bucketOf(p) <= bestSplit {
			leftN++
		}
	}
	if leftN == 0 || leftN == len(prims) {
		return 0, false
	}
	return leftN, true
}

// Intersect finds the closest shape hit along r within (tMin, tMax],
// descending into the near child first using the ray's axis direction
// sign.
func (bv *BVH) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	if bv.root == nil {
		return nil, false
	}
	return bv.intersectNode(bv.root, r, opts, tMin, tMax)
}

func (bv *BVH) intersectNode(n *bvhNode, r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	if !n.Bounds.Hit(r, tMin, tMax) {
		return nil, false
	}
	if n.isLeaf() {
		var best *Hit
		closest := tMax
		for i := n.Start; i < n.Start+n.Count; i++ {
			if hit, ok := bv.ordered[i].Intersect(r, opts, tMin, closest); ok {
				best = hit
				closest = hit.T
			}
		}
		return best, best != nil
	}

	first, second := n.Left, n.Right
	if r.Direction.Axis(n.Axis) < 0 {
		first, second = second, first
	}

	best, ok := bv.intersectNode(first, r, opts, tMin, tMax)
	closest := tMax
	if ok {
		closest = best.T
	}
	if hit2, ok2 := bv.intersectNode(second, r, opts, tMin, closest); ok2 {
		return hit2, true
	}
	return best, ok
}

// Occluded reports whether any shape blocks r within (tMin, tMax), without
// finding the closest hit -- the early-exit query variant used for shadow
// rays.
func (bv *BVH) Occluded(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) bool {
	if bv.root == nil {
		return false
	}
	return bv.occludedNode(bv.root, r, opts, tMin, tMax)
}

func (bv *BVH) occludedNode(n *bvhNode, r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) bool {
	if !n.Bounds.Hit(r, tMin, tMax) {
		return false
	}
	if n.isLeaf() {
		for i := n.Start; i < n.Start+n.Count; i++ {
			if _, ok := bv.ordered[i].Intersect(r, opts, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	return bv.occludedNode(n.Left, r, opts, tMin, tMax) || bv.occludedNode(n.Right, r, opts, tMin, tMax)
}

// WorldBounds returns the root node's bounds, or an invalid (zero) bounds
// for an empty BVH.
func (bv *BVH) WorldBounds() Bounds3 {
	if bv.root == nil {
		return Bounds3{}
	}
	return bv.root.Bounds
}

// Bounds satisfies Shape so a BVH can be nested as a single aggregate
// primitive inside another BVH (used for per-strand hair sub-trees); its
// world bounds already are its local bounds, since a sub-BVH's leaves were
// built from world-space shapes.
func (bv *BVH) Bounds() Bounds3 { return bv.WorldBounds() }

// Material satisfies Shape; a BVH has no single material of its own, since
// each of its leaves carries its own.
func (bv *BVH) Material() MaterialRef { return nil }
