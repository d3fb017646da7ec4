package shader

// SolidVertex transforms position/normal pairs for lit box faces.
const SolidVertex = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
	vNormal = aNormal;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

// SolidFragment applies one ambient and two directional lights.
const SolidFragment = `
#version 410 core

in vec3 vNormal;

uniform vec3 uColor;
uniform vec3 uAmbient;
uniform vec3 uLightDirs[2];
uniform vec3 uLightColors[2];

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	vec3 light = uAmbient;
	for (int i = 0; i < 2; i++) {
		light += uLightColors[i] * max(dot(n, uLightDirs[i]), 0.0);
	}
	FragColor = vec4(min(uColor * light, vec3(1.0)), 1.0);
}
`

// LineVertex transforms positions for wireframe overlays.
const LineVertex = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

// LineFragment draws lines in a flat color.
const LineFragment = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`
