package renderer

import "github.com/cunzhuang123/compositor/engine/renderer/material"

// PluginRendererBuilderOption is a functional option for configuring a PluginRenderer at construction.
type PluginRendererBuilderOption func(*pluginRenderer)

// WithPluginRendererName sets the plugin stage's identity.
func WithPluginRendererName(name string) PluginRendererBuilderOption {
	return func(p *pluginRenderer) {
		p.name = name
	}
}

// WithPluginRendererMaterialPass attaches the plugin stage's final Pass at construction time.
func WithPluginRendererMaterialPass(pass material.Pass) PluginRendererBuilderOption {
	return func(p *pluginRenderer) {
		p.materialPass = pass
	}
}

// WithPluginRendererVisible sets the plugin stage's initial visibility.
func WithPluginRendererVisible(visible bool) PluginRendererBuilderOption {
	return func(p *pluginRenderer) {
		p.visible = visible
	}
}
