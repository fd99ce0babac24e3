package decodersynth

import "fmt"

// ImagePayloadDecoder repacks the bits ImageToBits recovered from the
// compression-vehicle PNG back into the original payload bytes (discarding
// any padding Shape added beyond numBits), then points imageVar at a new
// Image backed by a Blob of those bytes instead of the storage PNG (§2,
// §8 scenario 3): image mode's payload is an arbitrary byte sequence the
// browser must display as-is, not the 1-bpp grid used to smuggle it
// through DEFLATE. imageVar is reused rather than introduced fresh, since
// the storage PNG it previously held is no longer needed once bitsVar is
// populated.
func ImagePayloadDecoder(bitsVar string, numBits int, imageVar string) Stage {
	js := fmt.Sprintf(`%s=%s.slice(0,%d)
b=new Uint8Array(%s.length/8)
for(j=0;j<b.length;j++)for(k=0;k<8;k++)b[j]=b[j]*2+%s[j*8+k]
%s=new Image
%s.src=URL.createObjectURL(new Blob([b]))
`, bitsVar, bitsVar, numBits, bitsVar, bitsVar, imageVar, imageVar)
	return Stage{Name: "image-payload", JS: js}
}

// CreateImage builds an Image element loading byteArrayVar's contents as a
// PNG Blob URL (§4.4): the browser's native PNG decoder does the DEFLATE
// work, so the decoder itself never implements inflate.
func CreateImage(byteArrayVar, imageVar string) Stage {
	js := fmt.Sprintf("%s=new Image\n%s.src=URL.createObjectURL(new Blob([%s],{type:'image/png'}))\n", imageVar, imageVar, byteArrayVar)
	return Stage{Name: "create-image", JS: js}
}

// ImageToBits waits for imageVar to decode, draws it to an offscreen
// canvas with smoothing disabled, reads back the raw RGBA pixels, and
// recovers one bit per pixel from the top bit of each red byte (`s[j*4]>>7`
// neutralizes the rounding noise browsers introduce around 1-bpp PNGs,
// §4.4). after is spliced into the same .then() callback since decode() is
// asynchronous and every later stage depends on bitsVar.
func ImageToBits(imageVar, rawPixelsVar, bitsVar, after string) Stage {
	js := fmt.Sprintf(`%s.decode().then(()=>{
c=document.createElement('canvas')
x=c.getContext('2d')
c=[c.width,c.height]=[%s.width,%s.height]
x.imageSmoothingEnabled=0
x.drawImage(%s,0,0)
%s=x.getImageData(0,0,...c).data
%s=[...Array(%s.length/4).keys()].map(j=>%s[j*4]>>7)
%s})
`, imageVar, imageVar, imageVar, imageVar, rawPixelsVar, bitsVar, rawPixelsVar, rawPixelsVar, after)
	return Stage{Name: "image-to-bits", JS: js}
}

// Renderer emits the final fragment that puts decoded content on the page
// (§6.1's element_id / raw / image options):
//   - mode "raw": write textVar directly into the document via document.write,
//     trusting it to contain markup.
//   - mode "image": the payload is itself a displayable image; append the
//     already-created image element, tagging it with elementID if set.
//   - mode "text" (default): set document.body's text content, or, when
//     elementID is set, create a dedicated <pre id=…> element instead.
func Renderer(mode, textVar, imageVar, elementID string) Stage {
	switch mode {
	case "raw":
		return Stage{Name: "renderer", JS: fmt.Sprintf("document.write(%s)\n", textVar)}
	case "image":
		if elementID != "" {
			return Stage{Name: "renderer", JS: fmt.Sprintf("%s.id=`%s`\ndocument.body.appendChild(%s)\n", imageVar, elementID, imageVar)}
		}
		return Stage{Name: "renderer", JS: fmt.Sprintf("document.body.appendChild(%s)\n", imageVar)}
	default:
		if elementID != "" {
			return Stage{Name: "renderer", JS: fmt.Sprintf("e=document.createElement('pre')\ne.id=`%s`\ne.textContent=%s\ndocument.body.appendChild(e)\n", elementID, textVar)}
		}
		return Stage{Name: "renderer", JS: fmt.Sprintf("document.body.style.whiteSpace='pre';document.body.textContent=%s\n", textVar)}
	}
}
