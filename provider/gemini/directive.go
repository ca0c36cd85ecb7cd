package gemini

// APIModel is the image-capable Gemini model used for every try-on request.
const APIModel = "gemini-2.5-flash-image"

// Directive is the fixed instruction sent after the two images.
const Directive = "Analyze the person in the first image and the clothing in the second image. " +
	"Generate a new image showing the person from the first image wearing the outfit from the second image. " +
	"The person's pose, face, and the background should be preserved from the first image. " +
	"Do not include any text overlay on the generated image."

// responseModalities admits both an image and commentary in the reply.
var responseModalities = []string{"IMAGE", "TEXT"}
