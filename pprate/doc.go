// Package pprate estimates the bottleneck capacity of a network path from
// the dispersion of back-to-back probe packets.
//
// The estimator works in two phases. Phase 1 turns packet pairs into rate
// samples, trims the outliers using the inter-quartile range, bins the
// survivors into a histogram and looks for modes. A single mode is the
// capacity. When several modes survive cleaning, phase 2 aggregates the
// inter-arrival times into packet trains of growing length until the
// train rates collapse into a single significant mode (the asymptotic
// dispersion rate, ADR). The ADR then selects which phase 1 mode is the
// capacity, since the capacity cannot be slower than the ADR.
//
// Estimation is purely computational: no I/O, no shared state, so
// independent flows may be estimated concurrently.
package pprate
