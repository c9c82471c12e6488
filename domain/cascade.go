package domain

import (
	logger "github.com/sirupsen/logrus"
)

// Propagate raises every record's bump kind to the least fixed point of the
// cascade rules over the dependents graph, mutating the records in place.
//
// The worklist is a plain FIFO queue. A record's bump only ever moves upward
// along the bump order and a record is re-enqueued only when it actually
// changes, so each record can be re-enqueued at most seven times (the height
// of the order). That bound holds regardless of cycles in the graph, and the
// semilattice merge makes the final assignment independent of processing
// order.
func Propagate(records []*ChangeRecord, rules CascadeRules, track Track, log logger.FieldLogger) {
	byID := make(map[string]*ChangeRecord, len(records))
	for _, r := range records {
		byID[r.Module.ID] = r
	}

	queue := make([]*ChangeRecord, len(records))
	copy(queue, records)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if !cur.NeedsProcessing || cur.Bump == BumpNone {
			continue
		}

		required := rules.DependencyBump(cur.Bump, track)
		if required == BumpNone {
			continue
		}

		for _, depID := range cur.Module.Dependents {
			dep, ok := byID[depID]
			if !ok {
				// Stale dependents reference from the detector; the graph
				// evolved between runs. Skip the edge, not the run.
				log.Warnf(
					"module %q lists unknown dependent %q, skipping edge",
					cur.Module.ID, depID,
				)
				continue
			}

			merged := MaxBump(dep.Bump, required)
			if merged.Cmp(dep.Bump) > 0 || !dep.NeedsProcessing {
				log.Debugf(
					"cascade: %s -> %s raises bump %s -> %s",
					cur.Module.ID, depID, dep.Bump, merged,
				)
				dep.Bump = merged
				dep.Reason = ReasonCascade
				dep.NeedsProcessing = true
				queue = append(queue, dep)
			}
		}
	}
}
