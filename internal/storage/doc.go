// Package storage provides JSON-based persistence for match snapshots.
//
// Snapshots track the matches seen for a set of referees across runs of
// `refsched check`. Each referee set gets its own file, snapshot_<key>.json,
// where key is derived from the sorted referee names.
// The default storage location is ~/.local/share/refsched/.
package storage
