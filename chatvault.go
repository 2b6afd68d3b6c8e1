// Package chatvault saves conversations from chat web applications into a
// local note vault. It reads messages, code blocks and artifacts from the
// rendered page of each supported platform, converts them to Markdown and
// persists them through an ordered chain of save strategies.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package chatvault
