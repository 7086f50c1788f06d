package effects

// effectGlobals are the kernel helpers. GLSL-style `v *= rot(a)` is rot2(v, a).
const effectGlobals = `//@fx:include sstep
//@fx:include rot2
//@fx:include hash3

fn headMovement(pos: vec3f, t: f32) -> vec3f {
    let xy = rot2(pos.xy, sstep(-1.0, -2.0, pos.y) * 0.2 * sin(t * 2.0));
    return vec3f(xy, pos.z);
}

fn breathAnimation(pos: vec3f, t: f32) -> vec3f {
    let b = sin(t * 1.5);
    let yz = rot2(pos.yz, sstep(-1.0, -3.0, pos.y) * 0.15 * -b);
    var result = vec3f(pos.x, yz.x + 1.2, yz.y + 0.3);
    result *= 1.0 + exp(-3.0 * length(pos)) * b;
    result.z -= 0.3;
    result.y -= 1.2;
    return result;
}

fn fractal1(pos: vec3f, t: f32, intensity: f32) -> vec4f {
    var m = 100.0;
    var p = pos * 0.1;
    p.y += 0.5;
    for (var i = 0; i < 8; i++) {
        p = abs(p) / clamp(abs(p.x * p.y), 0.3, 3.0) - 1.0;
        p = vec3f(rot2(p.xy, radians(90.0)), p.z);
        if (i > 1) {
            m = min(m, length(p.xy) + step(0.3, fract(p.z * 0.5 + t * 0.5 + f32(i) * 0.2)));
        }
    }
    m = step(m, 0.5) * 1.3 * intensity;
    return vec4f(-pos.y * 0.3, 0.5, 0.7, 0.3) * intensity + m;
}

fn fractal2(center: vec3f, scales: vec3f, rgba: vec4f, t: f32, intensity: f32) -> vec4f {
    var pos = center;
    let splatSize = length(scales);
    var p = pos * 0.65;
    pos.y += 2.0;
    var c = 0.0;
    var l2 = length(p);
    var m = 100.0;
    for (var i = 0; i < 10; i++) {
        p = abs(p) / dot(p, p) - 0.8;
        let l = length(p);
        c += exp(-abs(l - l2) * (1.0 + sin(t * 1.5 + pos.y)));
        l2 = l;
        m = min(m, l);
    }
    c = sstep(0.3, 0.5, m + sin(t * 1.5 + pos.y * 0.5)) + c * 0.1;
    return vec4f(vec3f(length(rgba.rgb)) * vec3f(c, c * c, c * c * c) * intensity,
                 rgba.a * exp(-20.0 * splatSize) * m * intensity);
}

fn sin3D(p: vec3f, t: f32) -> vec4f {
    let m = exp(-2.0 * length(sin(p * 5.0 + t * 3.0))) * 5.0;
    return vec4f(m) + 0.3;
}

fn disintegrate(pos: vec3f, t: f32, intensity: f32) -> vec4f {
    var p = pos + (hash3(pos) * 2.0 - 1.0) * intensity;
    let tt = sstep(-1.0, 0.5, -sin(t - pos.y * 0.5));
    let xz = rot2(p.xz, tt * 2.0 + p.y * 2.0 * tt);
    p = vec3f(xz.x, p.y, xz.y);
    return vec4f(mix(p, pos, tt), tt);
}

fn flare(pos: vec3f, t: f32) -> vec4f {
    var p = vec3f(0.0, -1.5, 0.0);
    var tt = sstep(-1.0, 0.5, sin(t + hash3(pos).x));
    tt = tt * tt;
    p.x += sin(t * 2.0) * tt;
    p.z += sin(t * 2.0) * tt;
    p.y += sin(t) * tt;
    return vec4f(mix(pos, p, tt), tt);
}

fn discoLights(worldPos: vec3f, meshCenter: vec3f, t: f32) -> vec3f {
    let room = vec3f(0.02, 0.02, 0.03);
    let distToBall = max(length(worldPos - meshCenter), 0.001);

    let cycle = t * 0.4 - 3.0 * floor(t * 0.4 / 3.0);
    var mainColor = vec3f(0.2, 1.0, 0.2);
    if (cycle < 1.0) {
        mainColor = vec3f(1.0, 0.2, 0.2);
    } else if (cycle < 2.0) {
        mainColor = vec3f(0.2, 0.2, 1.0);
    }

    var total = vec3f(0.0);
    var totalIntensity = 0.0;

    for (var i = 0; i < 16; i++) {
        for (var j = 0; j < 4; j++) {
            let idx = f32(i * 4 + j);
            let angle = f32(i) * 0.3927 + t * 0.8;
            let radius = 0.5 + f32(j) * 0.8;
            let lightPos = meshCenter + vec3f(cos(angle) * radius, sin(angle) * 0.3, sin(angle) * radius);
            let d = max(length(worldPos - lightPos), 0.001);
            let size = 0.15 + hash3(vec3f(idx)).x * 0.1;
            let pulse = 0.7 + 0.3 * sin(t * 3.0 + idx * 0.5);
            let strength = (1.0 - sstep(0.0, size, d)) * 2.5 * pulse;
            let color = max(mainColor + hash3(vec3f(idx, 1.0, 0.0)) * 0.4 - 0.2, vec3f(0.3));
            total += color * strength;
            totalIntensity += strength;
        }
    }

    for (var k = 0; k < 12; k++) {
        for (var l = 0; l < 4; l++) {
            let idx = f32(64 + k * 4 + l);
            let angle = f32(k) * 0.5236 + t * 0.6 * 1.3;
            let radius = 2.0 + f32(l) * 1.2;
            let height = (hash3(vec3f(f32(k), f32(l), 0.0)).x - 0.5) * 3.0;
            let lightPos = meshCenter + vec3f(cos(angle) * radius, height, sin(angle) * radius);
            let d = max(length(worldPos - lightPos), 0.001);
            let size = 0.12 + hash3(vec3f(idx)).x * 0.08;
            let pulse = 0.6 + 0.4 * sin(t * 4.0 + idx * 0.7);
            let strength = (1.0 - sstep(0.0, size, d)) * 3.0 * pulse;
            var color = mainColor;
            if (l == 0) {
                color *= vec3f(1.0, 0.8, 0.8);
            } else if (l == 1) {
                color *= vec3f(0.8, 0.8, 1.0);
            } else if (l == 2) {
                color *= vec3f(0.8, 1.0, 0.8);
            }
            total += color * strength;
            totalIntensity += strength;
        }
    }

    for (var n = 0; n < 32; n++) {
        let fi = f32(n);
        var offset = hash3(vec3f(fi, 2.0, 0.0)) * 8.0 - 4.0;
        offset.y = abs(offset.y) * 0.5;
        let drift = vec3f(
            sin(t * 0.5 + fi * 0.3) * 0.5,
            cos(t * 0.7 + fi * 0.5) * 0.3,
            sin(t * 0.6 + fi * 0.4) * 0.5,
        );
        let d = max(length(worldPos - (meshCenter + offset + drift)), 0.001);
        let size = 0.1 + hash3(vec3f(fi)).x * 0.05;
        let blink = step(0.3, hash3(vec3f(t * 2.0 + fi)).x);
        let strength = (1.0 - sstep(0.0, size, d)) * 4.0 * blink;
        let color = max(mix(mainColor, hash3(vec3f(fi, 3.0, 0.0)), 0.3), vec3f(0.4));
        total += color * strength;
        totalIntensity += strength;
    }

    var lit = room;
    if (totalIntensity > 0.0) {
        let average = total / totalIntensity;
        lit += average * totalIntensity * 0.3;
        let brightness = totalIntensity * 0.1;
        if (brightness > 0.5) {
            lit += average * (brightness - 0.5) * 2.0;
        }
    }
    return lit / (1.0 + distToBall * 0.3);
}

fn disco(pos: vec3f, rgba: vec4f, t: f32, intensity: f32, meshCenter: vec3f) -> vec4f {
    let lights = discoLights(pos, meshCenter, t);
    var rgb = rgba.rgb * 0.05 + lights * intensity * 6.0;
    let lum = length(lights);
    if (lum > 0.1) {
        rgb = mix(rgb, rgb * 2.0, lum);
    }
    return vec4f(rgb, min(1.0, rgba.a + lum * 1.2));
}`

// effectStatements dispatch on the effect type uniform.
const effectStatements = `let localPos = gsplat.center;
let splatColor = gsplat.rgba;
switch effect.effectType {
    case 1: {
        gsplat.center = headMovement(localPos, effect.t);
        let f = fractal1(localPos, effect.t, effect.intensity);
        gsplat.rgba = mix(splatColor, splatColor * f, effect.intensity);
    }
    case 2: {
        let e = fractal2(localPos, gsplat.scales, splatColor, effect.t, effect.intensity);
        gsplat.rgba = mix(splatColor, e, effect.intensity);
        gsplat.center = breathAnimation(localPos, effect.t);
    }
    case 3: {
        let e = sin3D(localPos, effect.t);
        gsplat.rgba = mix(splatColor, splatColor * e, effect.intensity);
        var pos = localPos;
        pos.y += 1.0;
        pos *= 1.0 + e.x * 0.05 * effect.intensity;
        pos.y -= 1.0;
        gsplat.center = pos;
    }
    case 4: {
        let e = flare(localPos, effect.t);
        gsplat.center = e.xyz;
        gsplat.rgba = vec4f(mix(splatColor.rgb, vec3f(1.0), abs(e.w)), mix(splatColor.a, 0.3, abs(e.w)));
    }
    case 5: {
        let e = disintegrate(localPos, effect.t, effect.intensity);
        gsplat.center = e.xyz;
        gsplat.scales = mix(vec3f(0.01), gsplat.scales, e.w);
    }
    case 6: {
        gsplat.rgba = disco(localPos, splatColor, effect.t, effect.intensity, effect.meshCenter);
    }
    default: {}
}`
