// Package pointcloud reads and writes point containers as CloudCompare
// style .asc text: one point per line, whitespace separated X Y Z followed
// by optional extra columns, with '#' comment lines.
package pointcloud
