package environment

import "github.com/i4sim/engine/internal/spatial"

// spatialHash buckets unit centers into uniform cells so neighbor queries
// only need to scan a handful of buckets instead of every unit.
type spatialHash struct {
	bucketSize float64
	buckets    map[bucketKey][]string
	owner      map[string]bucketKey
}

type bucketKey struct{ x, y int }

func newSpatialHash(bucketSize float64) *spatialHash {
	return &spatialHash{
		bucketSize: bucketSize,
		buckets:    make(map[bucketKey][]string),
		owner:      make(map[string]bucketKey),
	}
}

func (h *spatialHash) keyOf(p spatial.Vec2) bucketKey {
	return bucketKey{int(p.X / h.bucketSize), int(p.Y / h.bucketSize)}
}

// Upsert places/moves id to the bucket containing p.
func (h *spatialHash) Upsert(id string, p spatial.Vec2) {
	newKey := h.keyOf(p)
	if oldKey, ok := h.owner[id]; ok {
		if oldKey == newKey {
			return
		}
		h.removeFromBucket(oldKey, id)
	}
	h.buckets[newKey] = append(h.buckets[newKey], id)
	h.owner[id] = newKey
}

// Remove deletes id from the hash entirely.
func (h *spatialHash) Remove(id string) {
	if key, ok := h.owner[id]; ok {
		h.removeFromBucket(key, id)
		delete(h.owner, id)
	}
}

func (h *spatialHash) removeFromBucket(key bucketKey, id string) {
	bucket := h.buckets[key]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			h.buckets[key] = bucket[:len(bucket)-1]
			break
		}
	}
}

// Neighbors returns every id within radius of center's bucket neighborhood
// (a superset filtered by exact distance, excluding self).
func (h *spatialHash) Neighbors(center spatial.Vec2, radius float64, self string, positions func(id string) spatial.Vec2) []string {
	ck := h.keyOf(center)
	span := int(radius/h.bucketSize) + 1

	var out []string
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			bucket := h.buckets[bucketKey{ck.x + dx, ck.y + dy}]
			for _, id := range bucket {
				if id == self {
					continue
				}
				if center.DistanceTo(positions(id)) <= radius {
					out = append(out, id)
				}
			}
		}
	}
	return out
}
