package shader

// fullscreenVertexSource draws a two-triangle quad covering clip space from six generated
// vertices, so no vertex buffer is bound.
const fullscreenVertexSource = `//@fx:include fullscreen_io

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var corners = array<vec2f, 6>(
        vec2f(-1.0, -1.0), vec2f(1.0, -1.0), vec2f(1.0, 1.0),
        vec2f(-1.0, -1.0), vec2f(1.0, 1.0), vec2f(-1.0, 1.0),
    );
    let p = corners[index];
    var out: VertexOutput;
    out.position = vec4f(p, 0.0, 1.0);
    out.uv = vec2f(p.x * 0.5 + 0.5, 0.5 - p.y * 0.5);
    return out;
}
`

// fragmentHeader is shared by every post-processing fragment template.
const fragmentHeader = `//@fx:include fullscreen_io
//@fx:include post_bindings
{{.UniformBlock}}
`

// neighborSamples declares the 3x3 neighborhood. Texture v grows downward so "top" is -y.
const neighborSamples = `    let texel = 1.0 / uniforms.textureSize;
    let center = sampleAt(in.uv);
    let left = sampleAt(in.uv + vec2f(-texel.x, 0.0));
    let right = sampleAt(in.uv + vec2f(texel.x, 0.0));
    let top = sampleAt(in.uv + vec2f(0.0, -texel.y));
    let bottom = sampleAt(in.uv + vec2f(0.0, texel.y));
`

const diagonalSamples = `    let topLeft = sampleAt(in.uv + vec2f(-texel.x, -texel.y));
    let topRight = sampleAt(in.uv + vec2f(texel.x, -texel.y));
    let bottomLeft = sampleAt(in.uv + vec2f(-texel.x, texel.y));
    let bottomRight = sampleAt(in.uv + vec2f(texel.x, texel.y));
`

// The edge templates share one layout: above threshold either the test coloring or the
// strong sharpen, below threshold the weak sharpen. Alpha literals come from the
// PreserveAlpha constant.

const basicFragmentTemplate = fragmentHeader + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
` + neighborSamples + `
    let laplacian = (left + right + top + bottom) - 4.0 * center;
    let edgeStrength = length(laplacian.rgb);

    if (edgeStrength > {{f2 .Threshold}}) {
{{- if .TestMode}}
{{- if .ColorCodeEdges}}
        if (edgeStrength > {{f2 (mul .Threshold 2)}}) {
            return vec4f(1.0, 0.0, 0.0, {{testAlpha .Constants}});
        }
        return vec4f(1.0, 0.5, 0.0, {{testAlpha .Constants}});
{{- else}}
        return vec4f(1.0, 0.0, 0.0, {{testAlpha .Constants}});
{{- end}}
{{- else}}
        let sharpened = center - laplacian * {{f2 .SharpeningStrength}};
        return vec4f(sharpened.rgb, {{sharpAlpha .Constants}});
{{- end}}
    }
    let sharpened = center - laplacian * {{f2 (mul .SharpeningStrength 0.3)}};
    return vec4f(sharpened.rgb, {{sharpAlpha .Constants}});
}
`

const extendedFragmentTemplate = fragmentHeader + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
` + neighborSamples + diagonalSamples + `
    let laplacian = (left + right + top + bottom + topLeft + topRight + bottomLeft + bottomRight) - 8.0 * center;
    let edgeStrength = length(laplacian.rgb);

    if (edgeStrength > {{f2 .Threshold}}) {
{{- if .TestMode}}
{{- if .ColorCodeEdges}}
        let horizontal = (right - left) * 2.0 + (topRight + bottomRight - topLeft - bottomLeft);
        let vertical = (top - bottom) * 2.0 + (topLeft + topRight - bottomLeft - bottomRight);
        let edgeAngle = atan2(length(vertical), length(horizontal));
        if (abs(edgeAngle) < 0.5) {
            return vec4f(1.0, 0.0, 0.0, {{testAlpha .Constants}});
        } else if (abs(edgeAngle) > 2.6) {
            return vec4f(0.0, 1.0, 0.0, {{testAlpha .Constants}});
        }
        return vec4f(0.0, 0.0, 1.0, {{testAlpha .Constants}});
{{- else}}
        return vec4f(1.0, 0.0, 0.0, {{testAlpha .Constants}});
{{- end}}
{{- else}}
        let sharpened = center - laplacian * {{f2 .SharpeningStrength}};
        return vec4f(sharpened.rgb, {{sharpAlpha .Constants}});
{{- end}}
    }
    let sharpened = center - laplacian * {{f2 (mul .SharpeningStrength 0.3)}};
    return vec4f(sharpened.rgb, {{sharpAlpha .Constants}});
}
`

const sobelFragmentTemplate = fragmentHeader + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
` + neighborSamples + diagonalSamples + `
    let sobelX = (topRight + 2.0 * right + bottomRight) - (topLeft + 2.0 * left + bottomLeft);
    let sobelY = (bottomLeft + 2.0 * bottom + bottomRight) - (topLeft + 2.0 * top + topRight);
    let edgeStrength = sqrt(dot(sobelX.rgb, sobelX.rgb) + dot(sobelY.rgb, sobelY.rgb));

    if (edgeStrength > {{f2 .Threshold}}) {
{{- if .TestMode}}
{{- if .ColorCodeEdges}}
        let gradientX = length(sobelX.rgb);
        let gradientY = length(sobelY.rgb);
        if (gradientX > gradientY * 1.5) {
            return vec4f(1.0, 0.0, 0.0, {{testAlpha .Constants}});
        } else if (gradientY > gradientX * 1.5) {
            return vec4f(0.0, 1.0, 0.0, {{testAlpha .Constants}});
        }
        return vec4f(0.0, 0.0, 1.0, {{testAlpha .Constants}});
{{- else}}
        return vec4f(1.0, 0.0, 0.0, {{testAlpha .Constants}});
{{- end}}
{{- else}}
        let sharpened = center + (sobelX + sobelY) * {{f2 .SharpeningStrength}} * 0.5;
        return vec4f(sharpened.rgb, {{sharpAlpha .Constants}});
{{- end}}
    }
    let sharpened = center + (sobelX + sobelY) * {{f2 (mul .SharpeningStrength 0.2)}} * 0.5;
    return vec4f(sharpened.rgb, {{sharpAlpha .Constants}});
}
`

const bilateralFragmentTemplate = fragmentHeader + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    let texel = 1.0 / uniforms.textureSize;
    let center = sampleAt(in.uv);
    var sum = vec4f(0.0);
    var totalWeight = 0.0;

    let twoSpatialSigma2 = max(2.0 * {{f2 .SpatialSigma}} * {{f2 .SpatialSigma}}, 1e-6);
    let twoRangeSigma2 = max(2.0 * {{f2 .RangeSigma}} * {{f2 .RangeSigma}}, 1e-6);

    for (var x: i32 = -{{.KernelRadius}}; x <= {{.KernelRadius}}; x = x + 1) {
        for (var y: i32 = -{{.KernelRadius}}; y <= {{.KernelRadius}}; y = y + 1) {
            let pixelOffset = vec2f(f32(x), f32(y));
            let tap = sampleAt(in.uv + pixelOffset * texel);

            let spatialDist = length(pixelOffset);
            let spatialWeight = exp(-(spatialDist * spatialDist) / twoSpatialSigma2);

            let colorDist = length(tap.rgb - center.rgb);
            let rangeWeight = exp(-(colorDist * colorDist) / twoRangeSigma2);

            let weight = spatialWeight * rangeWeight;
            sum = sum + tap * weight;
            totalWeight = totalWeight + weight;
        }
    }
    return sum / totalWeight;
}
`
