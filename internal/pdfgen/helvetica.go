package pdfgen

// helveticaFont is the built-in Helvetica core font. Core fonts need no
// embedding; every conforming PDF reader ships them.
type helveticaFont struct{}

var helvetica = &helveticaFont{}

// Helvetica returns the built-in Helvetica core font.
func Helvetica() Font { return helvetica }

func (helveticaFont) Name() string { return "Helvetica" }

func (helveticaFont) TextWidth(text string, size float64) (float64, error) {
	encoded, err := encodeLatin1(text)
	if err != nil {
		return 0, err
	}
	var units int
	for _, c := range encoded {
		units += helveticaWidth(c)
	}
	return float64(units) / 1000 * size, nil
}

func (helveticaFont) encode(text string) ([]byte, error) {
	return encodeLatin1(text)
}

func (helveticaFont) writeObjects(d *doc) error {
	d.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	return nil
}

// helveticaWidth returns the AFM advance width of a character in
// 1/1000ths of the font size.
func helveticaWidth(c byte) int {
	if c >= 0x20 && c <= 0x7e {
		return helveticaASCIIWidths[c-0x20]
	}
	// Accented Latin-1 letters track their base glyph closely enough for
	// tiling purposes.
	return 556
}

// Advance widths for ASCII 0x20-0x7e from the Adobe Helvetica AFM.
var helveticaASCIIWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, // space ! " # $ % & ' ( )
	389, 584, 278, 333, 278, 278, 556, 556, 556, 556, // * + , - . / 0 1 2 3
	556, 556, 556, 556, 556, 556, 278, 278, 584, 584, // 4 5 6 7 8 9 : ; < =
	584, 556, 1015, 667, 667, 722, 722, 667, 611, 778, // > ? @ A B C D E F G
	722, 278, 500, 667, 556, 833, 722, 778, 667, 778, // H I J K L M N O P Q
	722, 667, 611, 722, 667, 944, 667, 667, 611, 278, // R S T U V W X Y Z [
	278, 278, 469, 556, 333, 556, 556, 500, 556, 556, // \ ] ^ _ ` a b c d e
	278, 556, 556, 222, 222, 500, 222, 833, 556, 556, // f g h i j k l m n o
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, // p q r s t u v w x y
	500, 334, 260, 334, 584, // z { | } ~
}
