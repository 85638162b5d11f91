package retro

// Ordered dither threshold matrices. Entries are ranks in [0, n²); the
// dither stage normalizes rank/n² to [-0.5, 0.5] before scaling.

var bayer4 = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

var bayer8 = [8][8]int{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// bayerThreshold returns the normalized threshold in [-0.5, 0.5) for pixel
// (x, y) under the given matrix size (4 or 8).
func bayerThreshold(x, y, size int) float64 {
	if size == 8 {
		return float64(bayer8[y&7][x&7])/64.0 - 0.5
	}
	return float64(bayer4[y&3][x&3])/16.0 - 0.5
}
