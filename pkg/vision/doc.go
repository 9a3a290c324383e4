// Package vision is a thin client for the Generative Language API,
// specialized for food photo analysis. It asks the model for a fixed
// plain-text answer format that the analysis package knows how to parse.
package vision
