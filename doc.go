/*
Package dcc implements the DCC sprite animation format of Diablo II:
decoding to palette-indexed frames and encoding back.

A DCC file holds a grid of directions × frames. Every direction is an
independent LSB-first bit stream that places its frames in a shared virtual
frame buffer cut into 4×4 cells. Each cell carries a palette of up to four
indices coded against the palette the same cell had in an earlier frame, and
pixels are stored as 0..2-bit slot indices into that palette. Cells that did
not change since their last appearance are skipped through the equal-cells
stream.

Decode runs two passes per direction: cell palettes first, pixels second.
Encode quantizes every cell once per direction, then encodes the direction
with each combination of the optional streams (see Variant) and keeps the
smallest result, so output is deterministic.

The package also reads engine palettes (.dat), exports and imports frames as
PNG, QOI or DDS images, and stores frame grids in compressed frame archives
(.dcca) for editing outside the codec.
*/
package dcc
