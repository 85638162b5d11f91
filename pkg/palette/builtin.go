package palette

// Builtin palette identifiers. DefaultID is the fallback for unknown lookups.
const (
	DefaultID = "sweetie16"

	IDGameboy   = "gameboy"
	IDSweetie16 = "sweetie16"
	IDNES       = "nes"
	IDGrayscale = "grayscale4"
)

// builtins returns the curated palettes shipped with pixelmill, keyed by
// sanitized identifier.
func builtins() map[string]Palette {
	return map[string]Palette{
		IDGameboy: New("Gameboy", []uint32{
			0xff0f380f, 0xff306230, 0xff8bac0f, 0xff9bbc0f,
		}, 4),

		IDGrayscale: New("Grayscale 4", []uint32{
			0xff000000, 0xff555555, 0xffaaaaaa, 0xffffffff,
		}, 4),

		// Sweetie 16 by GrafxKid, a common default for small pixel art.
		IDSweetie16: New("Sweetie 16", []uint32{
			0xff1a1c2c, 0xff5d275d, 0xffb13e53, 0xffef7d57,
			0xffffcd75, 0xffa7f070, 0xff38b764, 0xff257179,
			0xff29366f, 0xff3b5dc9, 0xff41a6f6, 0xff73eff7,
			0xfff4f4f4, 0xff94b0c2, 0xff566c86, 0xff333c57,
		}, 16),

		// A reduced NES-flavored set, bright primaries over dark ramps.
		IDNES: New("NES", []uint32{
			0xff000000, 0xfffcfcfc, 0xfff8f8f8, 0xffbcbcbc,
			0xff7c7c7c, 0xffa4e4fc, 0xff3cbcfc, 0xff0078f8,
			0xff0000fc, 0xffb8f8b8, 0xff00b800, 0xff006800,
			0xfff8b8b8, 0xfff83800, 0xffa81000, 0xfffce0a8,
			0xfff87858, 0xff881400, 0xfff8d878, 0xffac7c00,
		}, 20),
	}
}
