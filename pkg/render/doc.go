// Package render provides format conversion shared by the rendering
// backends.
//
// The graphviz engine produces SVG, PNG, JPG, and DOT natively; PDF
// output goes through [ToPDF], which converts SVG using the external
// rsvg-convert tool (from librsvg). [CheckPDFSupport] lets callers fail
// at construction time with an installation hint instead of midway
// through a render.
//
// The actual graph flattening and drawing lives in the [dot]
// subpackage; stencil and label formatting in [styles]; the flow-volume
// adapter in [sankey].
//
// [dot]: github.com/matzehuels/enerviz/pkg/render/dot
// [styles]: github.com/matzehuels/enerviz/pkg/render/styles
// [sankey]: github.com/matzehuels/enerviz/pkg/render/sankey
package render
