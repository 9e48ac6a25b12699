package models

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
}

// OutputClassSet ties a family to its full list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Family ModelFamily
	// Classes that are supported and mappable.
	Classes []OutputClass
	// byIndex for lookup by model index; label maps may have gaps.
	byIndex map[int]string
}

func newClassSet(family ModelFamily, classes []OutputClass) *OutputClassSet {
	s := &OutputClassSet{Family: family, Classes: classes, byIndex: make(map[int]string, len(classes))}
	for _, c := range classes {
		s.byIndex[c.Index] = c.Name
	}
	return s
}

// Name returns the label for a model index. Unknown indices get a synthetic
// "class_<idx>" name so that no candidate is dropped for lack of a label.
func (s *OutputClassSet) Name(idx int) string {
	if name, ok := s.byIndex[idx]; ok {
		return name
	}
	return fmt.Sprintf("class_%d", idx)
}

// Entity returns the display form of a label: the known name with its first
// letter upper-cased, e.g. "traffic light" becomes "Traffic light". Unknown
// indices keep the synthetic name returned by Name.
func (s *OutputClassSet) Entity(idx int) string {
	name, ok := s.byIndex[idx]
	if !ok {
		return s.Name(idx)
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Len returns the number of known classes.
func (s *OutputClassSet) Len() int {
	return len(s.Classes)
}

// COCOClasses is the full 80 COCO classes plus "__background__" at index 0.
var COCOClasses = newClassSet(ModelFamilyCOCO, []OutputClass{
	{0, "__background__"}, {1, "person"}, {2, "bicycle"}, {3, "car"}, {4, "motorcycle"},
	{5, "airplane"}, {6, "bus"}, {7, "train"}, {8, "truck"}, {9, "boat"},
	{10, "traffic light"}, {11, "fire hydrant"}, {12, "stop sign"}, {13, "parking meter"}, {14, "bench"},
	{15, "bird"}, {16, "cat"}, {17, "dog"}, {18, "horse"}, {19, "sheep"},
	{20, "cow"}, {21, "elephant"}, {22, "bear"}, {23, "zebra"}, {24, "giraffe"},
	{25, "backpack"}, {26, "umbrella"}, {27, "handbag"}, {28, "tie"}, {29, "suitcase"},
	{30, "frisbee"}, {31, "skis"}, {32, "snowboard"}, {33, "sports ball"}, {34, "kite"},
	{35, "baseball bat"}, {36, "baseball glove"}, {37, "skateboard"}, {38, "surfboard"}, {39, "tennis racket"},
	{40, "bottle"}, {41, "wine glass"}, {42, "cup"}, {43, "fork"}, {44, "knife"},
	{45, "spoon"}, {46, "bowl"}, {47, "banana"}, {48, "apple"}, {49, "sandwich"},
	{50, "orange"}, {51, "broccoli"}, {52, "carrot"}, {53, "hot dog"}, {54, "pizza"},
	{55, "donut"}, {56, "cake"}, {57, "chair"}, {58, "couch"}, {59, "potted plant"},
	{60, "bed"}, {61, "dining table"}, {62, "toilet"}, {63, "tv"}, {64, "laptop"},
	{65, "mouse"}, {66, "remote"}, {67, "keyboard"}, {68, "cell phone"}, {69, "microwave"},
	{70, "oven"}, {71, "toaster"}, {72, "sink"}, {73, "refrigerator"}, {74, "book"},
	{75, "clock"}, {76, "vase"}, {77, "scissors"}, {78, "teddy bear"}, {79, "hair drier"},
	{80, "toothbrush"},
})

// TFCOCOClasses mirrors TensorFlow's COCO label map used by the object detection
// zoo SSD exports: 90 ids with gaps, background implicit.
var TFCOCOClasses = newClassSet(ModelFamilyTF, []OutputClass{
	{1, "person"}, {2, "bicycle"}, {3, "car"}, {4, "motorcycle"}, {5, "airplane"},
	{6, "bus"}, {7, "train"}, {8, "truck"}, {9, "boat"}, {10, "traffic light"},
	{11, "fire hydrant"}, {13, "stop sign"}, {14, "parking meter"}, {15, "bench"}, {16, "bird"},
	{17, "cat"}, {18, "dog"}, {19, "horse"}, {20, "sheep"}, {21, "cow"},
	{22, "elephant"}, {23, "bear"}, {24, "zebra"}, {25, "giraffe"}, {27, "backpack"},
	{28, "umbrella"}, {31, "handbag"}, {32, "tie"}, {33, "suitcase"}, {34, "frisbee"},
	{35, "skis"}, {36, "snowboard"}, {37, "sports ball"}, {38, "kite"}, {39, "baseball bat"},
	{40, "baseball glove"}, {41, "skateboard"}, {42, "surfboard"}, {43, "tennis racket"}, {44, "bottle"},
	{46, "wine glass"}, {47, "cup"}, {48, "fork"}, {49, "knife"}, {50, "spoon"},
	{51, "bowl"}, {52, "banana"}, {53, "apple"}, {54, "sandwich"}, {55, "orange"},
	{56, "broccoli"}, {57, "carrot"}, {58, "hot dog"}, {59, "pizza"}, {60, "donut"},
	{61, "cake"}, {62, "chair"}, {63, "couch"}, {64, "potted plant"}, {65, "bed"},
	{67, "dining table"}, {70, "toilet"}, {72, "tv"}, {73, "laptop"}, {74, "mouse"},
	{75, "remote"}, {76, "keyboard"}, {77, "cell phone"}, {78, "microwave"}, {79, "oven"},
	{80, "toaster"}, {81, "sink"}, {82, "refrigerator"}, {84, "book"}, {85, "clock"},
	{86, "vase"}, {87, "scissors"}, {88, "teddy bear"}, {89, "hair drier"}, {90, "toothbrush"},
})

// PascalVOCClasses is the 20 Pascal VOC classes + "__background__" at index 0.
var PascalVOCClasses = newClassSet(ModelFamilyVOC, []OutputClass{
	{0, "__background__"}, {1, "aeroplane"}, {2, "bicycle"}, {3, "bird"}, {4, "boat"},
	{5, "bottle"}, {6, "bus"}, {7, "car"}, {8, "cat"}, {9, "chair"},
	{10, "cow"}, {11, "diningtable"}, {12, "dog"}, {13, "horse"}, {14, "motorbike"},
	{15, "person"}, {16, "pottedplant"}, {17, "sheep"}, {18, "sofa"}, {19, "train"},
	{20, "tvmonitor"},
})

// ClassSet returns the label map for a model family.
func ClassSet(family ModelFamily) (*OutputClassSet, error) {
	switch family {
	case ModelFamilyCOCO:
		return COCOClasses, nil
	case ModelFamilyTF, "":
		return TFCOCOClasses, nil
	case ModelFamilyVOC:
		return PascalVOCClasses, nil
	default:
		return nil, fmt.Errorf("unknown model family %q", family)
	}
}
