// Package extract defines the narrow ports through which artifacts leave a
// completed build, plus the default backends.
//
// The artifact router only ever sees the two small interfaces here; the
// container mechanics behind them (instantiating an image, copying a path
// out, serializing the whole image) are external collaborators consumed as
// black boxes.
package extract
