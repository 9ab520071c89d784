// Package report renders a rigidification Descriptor for inspection: an
// interactive go-echarts scatter (HTML) and a static gonum/plot scatter
// (PNG). Both project the body onto the XY plane and draw free points,
// rigidified points per body and the rigid frame origins as separate
// series.
package report
