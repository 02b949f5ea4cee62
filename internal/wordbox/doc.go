// Package wordbox computes and caches the word boxes of a page region.
//
// A Context stands for one caller-held page context. It owns a Cache with
// two slots, one per Kind (reflowed and native boxes). Service.GetWordBoxes
// fills a slot the first time it is asked for that kind and never again:
// later calls return the cached result even when a different bitmap is
// passed. Callers that change the page call Context.Invalidate or
// Context.Reset.
//
// The detector is picked from the context: CJK contexts go through the OCR
// engine, everything else through dilation.
package wordbox
