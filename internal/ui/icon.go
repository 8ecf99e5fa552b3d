package ui

// iconBytes is a 16x16 PNG used as the tray icon.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x19, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x64, 0x60, 0x60, 0xf8,
	0xcf, 0x40, 0x01, 0x60, 0x1a, 0x35, 0x60, 0xd4, 0x80, 0x51, 0x03, 0x46,
	0x0d, 0x18, 0x35, 0x60, 0xd4, 0x00, 0x7a, 0x19, 0x00, 0x00, 0x03, 0x10,
	0x00, 0x1f, 0x54, 0xdd, 0x14, 0xc1, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45,
	0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
