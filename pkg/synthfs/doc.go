// Package synthfs applies batches of filesystem changes through the synthfs
// pipeline executor. Deployments use it to lay down the skeleton directories
// of a release.
package synthfs
