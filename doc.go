// Package avif converts pixels between the planar YUV layout produced and
// consumed by AVIF codecs and packed RGB(A) buffers.
//
// The engine covers 8, 10 and 12-bit YUV in 4:4:4, 4:2:2, 4:2:0 and 4:0:0,
// limited and full range, the CICP matrix coefficients that describe a
// linear transform (Identity, YCgCo and the Kr/Kb family), and 8 to 16-bit
// RGB in six channel orders with straight or premultiplied alpha. Chroma is
// averaged over 2x2 blocks when encoding and upsampled with nearest or
// bilinear filtering when decoding.
//
// Container parsing, entropy coding and plane allocation policy belong to
// the surrounding codec; this package validates and converts buffers that
// already exist.
//
// Decoding a frame to RGBA:
//
//	rgb := avif.NewRGBImage(img)
//	rgb.AllocatePixels()
//	err := avif.ImageToRGB(img, rgb)
//
// Encoding RGBA into pre-allocated planes:
//
//	img := avif.NewImage(w, h, 10, avif.PixelFormatYUV420)
//	img.AllocatePlanes(avif.PlanesYUV)
//	err := avif.ImageFromRGB(rgb, img)
package avif
