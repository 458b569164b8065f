// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package shrink

import (
	"fmt"
	"path/filepath"
)

// DefaultMainClass is R8 command-line entry point.
const DefaultMainClass = "com.android.tools.r8.R8"

// DefaultJava is java launcher looked up in PATH when Command.Java is empty.
const DefaultJava = "java"

// Command describes one R8 invocation producing class files.
type Command struct {
	// Java is java launcher path.
	Java string `json:"java,omitempty" yaml:"java,omitempty"`
	// ToolJar is R8 jar put on launcher classpath.
	ToolJar string `json:"tool_jar" yaml:"tool_jar"`
	// MainClass is R8 main class.
	MainClass string `json:"main_class,omitempty" yaml:"main_class,omitempty"`
	// JDKHome is JDK installation used as --lib.
	JDKHome string `json:"jdk_home" yaml:"jdk_home"`
	// MappingOutput is ProGuard mapping file written by R8.
	MappingOutput string `json:"mapping_output" yaml:"mapping_output"`
	// Output is shrunk jar written by R8.
	Output string `json:"output" yaml:"output"`
	// ProgramFiles are jars to shrink.
	ProgramFiles []string `json:"program_files" yaml:"program_files"`
	// ClassPath are jars referenced but not shrunk.
	ClassPath []string `json:"class_path,omitempty" yaml:"class_path,omitempty"`
	// ProguardConfigs are rule files passed via --pg-conf.
	ProguardConfigs []string `json:"proguard_configs,omitempty" yaml:"proguard_configs,omitempty"`
	// ExtraArgs are appended before program files.
	ExtraArgs []string `json:"extra_args,omitempty" yaml:"extra_args,omitempty"`
}

// applyDefaults fills zero-valued launcher fields.
func (c *Command) applyDefaults() {
	if c.Java == "" {
		c.Java = DefaultJava
	}

	if c.MainClass == "" {
		c.MainClass = DefaultMainClass
	}
}

// Validate reports missing required fields.
func (c Command) Validate() error {
	switch {
	case c.ToolJar == "":
		return fmt.Errorf("%w: tool jar is required", ErrInvalidCommand)
	case c.Output == "":
		return fmt.Errorf("%w: output is required", ErrInvalidCommand)
	case c.MappingOutput == "":
		return fmt.Errorf("%w: mapping output is required", ErrInvalidCommand)
	case c.JDKHome == "":
		return fmt.Errorf("%w: jdk home is required", ErrInvalidCommand)
	case len(c.ProgramFiles) == 0:
		return fmt.Errorf("%w: no program files", ErrInvalidCommand)
	}

	return nil
}

// Args returns R8 arguments: release class-file mode, output and mapping,
// classpath and rules, JDK library and finally program files. Paths are made absolute.
func (c Command) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := make([]string, 0, 8+2*len(c.ClassPath)+2*len(c.ProguardConfigs)+len(c.ExtraArgs)+len(c.ProgramFiles))
	args = append(args, "--release", "--classfile")

	out, err := absPath(c.Output)
	if err != nil {
		return nil, err
	}
	mapping, err := absPath(c.MappingOutput)
	if err != nil {
		return nil, err
	}
	args = append(args, "--output", out, "--pg-map-output", mapping)

	for _, f := range c.ClassPath {
		p, err := absPath(f)
		if err != nil {
			return nil, err
		}
		args = append(args, "--classpath", p)
	}

	for _, f := range c.ProguardConfigs {
		p, err := absPath(f)
		if err != nil {
			return nil, err
		}
		args = append(args, "--pg-conf", p)
	}

	jdk, err := absPath(c.JDKHome)
	if err != nil {
		return nil, err
	}
	args = append(args, "--lib", jdk)
	args = append(args, c.ExtraArgs...)

	for _, f := range c.ProgramFiles {
		p, err := absPath(f)
		if err != nil {
			return nil, err
		}
		args = append(args, p)
	}

	return args, nil
}

// launcherArgs returns full java argument list.
func (c Command) launcherArgs() ([]string, error) {
	toolArgs, err := c.Args()
	if err != nil {
		return nil, err
	}

	jar, err := absPath(c.ToolJar)
	if err != nil {
		return nil, err
	}

	return append([]string{"-cp", jar, c.MainClass}, toolArgs...), nil
}

// absPath resolves path against working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	return abs, nil
}
