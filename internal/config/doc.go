// Package config provides configuration structures and utilities for
// finharvest. It defines the run options, the source registry with its
// built-in Indian regulator sources, and the sources-file loader.
package config
